// Package middleware implements the secure-context pipeline that protects
// every tenant-scoped operation.
//
// # Pipeline
//
// Four independent stages compose in a fixed order:
//
//	CSRF -> tenant resolution -> identity resolution -> permission check
//
// Each stage is an ordinary func(http.Handler) http.Handler, so stages test
// in isolation and compose with Chain. A stage either passes an enriched
// request to the next stage or writes a terminal JSON error; the wrapped
// handler is never invoked after a failure.
//
// The CSRF stage runs first on purpose: a request without the CSRF header is
// rejected before any tenant, session, or role lookup, so unverified callers
// never trigger store reads.
//
// # Entry points
//
//	p := middleware.NewPipeline(deps)
//
//	// tenant + identity, no permission requirement
//	router.Handle("/api/v1/me/tenants", p.SecureTenantContext()(handler))
//
//	// tenant + identity + mandatory permission check
//	router.Handle("/api/v1/roles",
//		p.SecureTenantPermission(authz.ResourceRole, authz.PermissionWrite)(handler))
//
// On success exactly one auth.AuthorizationContext is placed in the request
// context; handlers read it with GetAuthorizationContext.
package middleware
