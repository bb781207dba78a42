// Package api exposes the Warden HTTP surface.
//
// Every tenant-scoped route runs behind the secure-context pipeline from
// pkg/middleware. The decision endpoint serves UI guard components a
// read-only allow/deny answer; it is a convenience, never the enforcement
// point. Mutating routes carry their own permission requirements regardless
// of what any client-side guard renders.
package api
