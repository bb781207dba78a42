package authz

import (
	"context"
	"fmt"
	"time"
)

// RoleSource resolves a user's effective global roles. "No roles" is an empty
// slice, never an error.
type RoleSource interface {
	ListUserGlobalRoles(ctx context.Context, userID string) ([]GlobalRole, error)
}

// MembershipSource resolves a user's membership in a single tenant. Absence
// of membership is (nil, nil), never an error.
type MembershipSource interface {
	GetMembership(ctx context.Context, userID, tenantID string) (*TenantMembership, error)
}

// Checker evaluates permission checks
type Checker interface {
	Check(ctx context.Context, check Check) (*Decision, error)
}

// Evaluator implements Checker by merging global-role grants with the grants
// of the user's tenant-scoped role. Every check re-reads role and membership
// state; there is no cache, so a revoked grant takes effect on the next
// request.
type Evaluator struct {
	roles       RoleSource
	memberships MembershipSource
}

// NewEvaluator creates a permission evaluator over the given grant sources
func NewEvaluator(roles RoleSource, memberships MembershipSource) *Evaluator {
	return &Evaluator{
		roles:       roles,
		memberships: memberships,
	}
}

// Check computes an allow/deny decision for (user, tenant, resource,
// permission). The returned error is non-nil only for infrastructure faults;
// an authorization denial is a Decision with Allowed=false.
func (e *Evaluator) Check(ctx context.Context, check Check) (*Decision, error) {
	globalRoles, err := e.roles.ListUserGlobalRoles(ctx, check.UserID)
	if err != nil {
		return nil, fmt.Errorf("list global roles for user %s: %w", check.UserID, err)
	}

	var matched []string
	for _, role := range globalRoles {
		if role.HasGrant(check.Resource, check.Permission) {
			matched = append(matched, role.Name)
		}
	}

	membership, err := e.memberships.GetMembership(ctx, check.UserID, check.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get membership for user %s in tenant %s: %w", check.UserID, check.TenantID, err)
	}
	if membership != nil {
		for _, g := range TenantRoleGrants(membership.Role) {
			if g.Resource == check.Resource && g.Permission == check.Permission {
				matched = append(matched, string(membership.Role))
				break
			}
		}
	}

	decision := &Decision{
		Allowed:      len(matched) > 0,
		MatchedRoles: matched,
		CheckedAt:    time.Now().UTC(),
	}
	if decision.Allowed {
		decision.Reason = fmt.Sprintf("granted by roles: %v", matched)
	} else {
		decision.Reason = "no matching grant"
	}

	return decision, nil
}
