package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/store"
)

// MembershipService resolves which tenants a user belongs to and which
// tenant-scoped role they hold in each
type MembershipService struct {
	store   store.Store
	tenants *Service
}

// NewMembershipService creates a membership service
func NewMembershipService(s store.Store, tenants *Service) *MembershipService {
	return &MembershipService{store: s, tenants: tenants}
}

// GetMembership returns the user's membership in a tenant, or (nil, nil) when
// the user does not belong to it
func (m *MembershipService) GetMembership(ctx context.Context, userID, tenantID string) (*authz.TenantMembership, error) {
	value, found, err := m.store.Get(ctx, store.MembershipKey(userID, tenantID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var membership authz.TenantMembership
	if err := json.Unmarshal([]byte(value), &membership); err != nil {
		return nil, fmt.Errorf("corrupt membership record for user %s tenant %s: %w", userID, tenantID, err)
	}
	return &membership, nil
}

// GetUserTenants returns every tenant the user belongs to, sorted by slug so
// tenant-switcher UIs see a stable order
func (m *MembershipService) GetUserTenants(ctx context.Context, userID string) ([]Tenant, error) {
	keys, err := m.store.Keys(ctx, store.MembershipPattern(userID))
	if err != nil {
		return nil, err
	}

	result := make([]Tenant, 0, len(keys))
	for _, key := range keys {
		value, found, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			// Removed between the scan and the read; skip.
			continue
		}
		var membership authz.TenantMembership
		if err := json.Unmarshal([]byte(value), &membership); err != nil {
			return nil, fmt.Errorf("corrupt membership record at %s: %w", key, err)
		}
		tenant, err := m.tenants.GetTenantByID(ctx, membership.TenantID)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			result = append(result, *tenant)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result, nil
}

// AddMembership adds a user to a tenant with the given role. Re-adding
// overwrites the role, so repeated invitations converge.
func (m *MembershipService) AddMembership(ctx context.Context, userID, tenantID string, role authz.TenantRole) error {
	membership := authz.TenantMembership{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		AddedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(membership)
	if err != nil {
		return fmt.Errorf("marshal membership: %w", err)
	}
	return m.store.Set(ctx, store.MembershipKey(userID, tenantID), string(data))
}

// RemoveMembership removes a user from a tenant; removing a missing
// membership is a no-op
func (m *MembershipService) RemoveMembership(ctx context.Context, userID, tenantID string) error {
	return m.store.Delete(ctx, store.MembershipKey(userID, tenantID))
}
