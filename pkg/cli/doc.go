// Package cli implements the wardenctl administrative commands.
//
// The commands talk directly to the shared KV store, not to the HTTP API, so
// they work on a fresh install before any user or role exists. That is how
// the first operator, tenant, and role get bootstrapped.
package cli
