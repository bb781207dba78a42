// Package store provides the shared key-value store the authorization core
// reads and writes through.
//
// The Store interface is deliberately small (get/set/keys/delete) so tests
// can substitute an in-memory server or a counting fake without touching the
// services built on top. The production implementation is Redis-backed.
//
// All keys follow the deterministic schema in keys.go. A configurable key
// prefix isolates test-mode data from production-shaped data in the same
// Redis instance.
package store
