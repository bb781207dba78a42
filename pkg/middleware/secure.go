package middleware

import (
	"errors"
	"net/http"

	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/auth"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/contextkeys"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/tenants"
)

// CSRFHeader carries the opaque anti-forgery token. This pipeline only checks
// presence; issuance and validation of the token's value are external.
const CSRFHeader = "X-CSRF-Token"

// Deps are the pipeline's collaborators, injected explicitly so tests can
// substitute fakes without module-level state
type Deps struct {
	Resolver    *tenants.Resolver
	Identity    auth.IdentityResolver
	Checker     authz.Checker
	Memberships *tenants.MembershipService
	Audit       audit.Recorder
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// Pipeline builds the secure-context middleware chains
type Pipeline struct {
	deps Deps
}

// NewPipeline creates a pipeline over the given collaborators
func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// SecureTenantContext composes CSRF, tenant, and identity stages. The wrapped
// handler runs with a validated AuthorizationContext (no permission decision).
func (p *Pipeline) SecureTenantContext() Middleware {
	return Chain(p.CSRF(), p.Tenant(), p.Identity())
}

// SecureTenantPermission composes the full pipeline including a mandatory
// permission check against the evaluator
func (p *Pipeline) SecureTenantPermission(resource authz.ResourceType, permission authz.Permission) Middleware {
	return Chain(p.CSRF(), p.Tenant(), p.Identity(), p.Permission(resource, permission))
}

// CSRF rejects requests lacking the CSRF header before any other work. No
// store call happens on the rejection path.
func (p *Pipeline) CSRF() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(CSRFHeader) == "" {
				p.reject(w, r, authz.ErrCSRFMissing)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Tenant resolves the request's tenant and seeds the AuthorizationContext.
// An unresolvable tenant is a terminal 404.
func (p *Pipeline) Tenant() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant, err := p.deps.Resolver.Resolve(r)
			if err != nil {
				p.reject(w, r, err)
				return
			}
			ctx := contextkeys.WithAuthorization(r.Context(), &auth.AuthorizationContext{Tenant: tenant})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity resolves the authenticated user and records it in the
// AuthorizationContext. Runs after the tenant stage.
func (p *Pipeline) Identity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthorizationContext(r)
			if authCtx == nil {
				// Stage ordering bug, not a client error.
				p.reject(w, r, authz.ErrStoreUnavailable)
				return
			}
			userID, err := p.deps.Identity.ResolveUser(r)
			if err != nil {
				p.reject(w, r, err)
				return
			}
			authCtx.UserID = userID
			next.ServeHTTP(w, r)
		})
	}
}

// Permission evaluates (resource, permission) for the resolved user and
// tenant. Deny and evaluator faults are both terminal; faults deny rather
// than fail open.
func (p *Pipeline) Permission(resource authz.ResourceType, permission authz.Permission) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthorizationContext(r)
			if authCtx == nil || authCtx.UserID == "" {
				p.reject(w, r, authz.ErrAuthenticationRequired)
				return
			}

			decision, err := p.deps.Checker.Check(r.Context(), authz.Check{
				UserID:     authCtx.UserID,
				TenantID:   authCtx.Tenant.ID,
				Resource:   resource,
				Permission: permission,
			})
			if err != nil {
				p.reject(w, r, err)
				return
			}
			if p.deps.Metrics != nil {
				p.deps.Metrics.RecordDecision(decision.Allowed)
			}
			p.record(r, authCtx, resource, permission, decision)
			if !decision.Allowed {
				p.reject(w, r, authz.ErrPermissionDenied)
				return
			}

			authCtx.Decision = decision
			next.ServeHTTP(w, r)
		})
	}
}

// GetAuthorizationContext extracts the authorization context from a request.
// It is nil until the tenant stage has run.
func GetAuthorizationContext(r *http.Request) *auth.AuthorizationContext {
	value := r.Context().Value(contextkeys.AuthorizationKey)
	if value == nil {
		return nil
	}
	authCtx, ok := value.(*auth.AuthorizationContext)
	if !ok {
		return nil
	}
	return authCtx
}

// record writes the decision to the audit trail. Best effort: a failed write
// is logged and the request proceeds on the decision alone.
func (p *Pipeline) record(r *http.Request, authCtx *auth.AuthorizationContext, resource authz.ResourceType, permission authz.Permission, decision *authz.Decision) {
	if p.deps.Audit == nil {
		return
	}
	err := p.deps.Audit.Record(r.Context(), &audit.Event{
		RequestID:  contextkeys.GetRequestID(r.Context()),
		TenantID:   authCtx.Tenant.ID,
		UserID:     authCtx.UserID,
		Resource:   resource,
		Permission: permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
	})
	if err != nil && p.deps.Logger != nil {
		p.deps.Logger.WithError(err).Warn("failed to record audit event")
	}
}

func (p *Pipeline) reject(w http.ResponseWriter, r *http.Request, err error) {
	code := authz.ErrStoreUnavailable.Code
	var authzErr *authz.Error
	if errors.As(err, &authzErr) {
		code = authzErr.Code
	}

	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordRejection(code)
	}
	if p.deps.Logger != nil {
		logger := p.deps.Logger.WithField("code", code)
		if requestID := contextkeys.GetRequestID(r.Context()); requestID != "" {
			logger = logger.WithField("request_id", requestID)
		}
		if code == authz.ErrStoreUnavailable.Code {
			logger.WithError(err).Error("request rejected by authorization pipeline")
		} else {
			logger.Warn("request rejected by authorization pipeline")
		}
	}

	httputil.WriteAuthzError(w, err)
}
