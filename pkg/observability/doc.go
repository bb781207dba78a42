// Package observability provides structured logging, Prometheus metrics, and
// graceful shutdown for the Warden service.
package observability
