package auth

import (
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/tenants"
)

// AuthorizationContext is the request-scoped outcome of the secure-context
// pipeline: the resolved tenant, the authenticated user, and the most recent
// permission decision (nil when the pipeline ran without a permission stage).
//
// It is constructed exactly once per request by the middleware, handed to the
// wrapped handler through the request context, and discarded at request end.
// Handlers only ever see it after every prior stage succeeded.
type AuthorizationContext struct {
	Tenant   *tenants.Tenant
	UserID   string
	Decision *authz.Decision
}
