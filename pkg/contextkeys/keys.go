// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the service are defined here so handlers and
// middleware never disagree on a key string.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthorizationKey contains *auth.AuthorizationContext
	// Set by: the secure-context middleware pipeline (pkg/middleware)
	// Required by: every wrapped handler, the decision endpoint
	AuthorizationKey Key = "authorization_context"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: logger, error responses
	RequestIDKey Key = "request_id"
)

// WithAuthorization adds the authorization context to the context
func WithAuthorization(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthorizationKey, authCtx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
