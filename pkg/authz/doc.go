// Package authz implements permission evaluation for the Warden multi-tenant
// authorization service.
//
// # Overview
//
// Authorization decisions merge two sources of grants:
//
//  1. Global roles: named roles assigned to a user across all tenants. Each
//     global role carries an explicit set of (resource, permission) grants and
//     is stored centrally by the roles service.
//  2. Tenant-scoped roles: the single role a user holds through a tenant
//     membership. Tenant roles come from a closed built-in vocabulary
//     (admin, editor, viewer) with fixed grant sets.
//
// The union of both sources decides the outcome. Semantics are additive only:
// there is no explicit-deny grant type, so a grant from either source allows
// the action and absence from both denies it. Adding deny-overrides would be
// a deliberate design change, not an extension of this package.
//
// # Fail closed
//
// Every indeterminate state denies. An unknown user, a tenant with no
// membership, or an empty grant set all produce a Deny decision. Store
// failures are not decisions at all: they surface as ErrStoreUnavailable so
// callers can distinguish "access denied" from "authorization service
// unavailable" (and still refuse the request).
//
// # Usage
//
//	eval := authz.NewEvaluator(roleSvc, membershipSvc, logger)
//	decision, err := eval.Check(ctx, authz.Check{
//		UserID:     "u-123",
//		TenantID:   "t-acme",
//		Resource:   authz.ResourceTenant,
//		Permission: authz.PermissionRead,
//	})
//
// # Related Packages
//
//   - pkg/roles: global role storage and assignment
//   - pkg/tenants: tenant records and memberships
//   - pkg/middleware: request pipeline that enforces decisions
package authz
