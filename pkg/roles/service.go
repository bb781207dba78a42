package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/store"
)

// Service manages global roles and their user assignments. All state lives in
// the injected store; the service itself is stateless and safe for concurrent
// use.
type Service struct {
	store store.Store
}

// NewService creates a role service over the given store
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// GetGlobalRole returns a role by id, or (nil, nil) when it does not exist
func (s *Service) GetGlobalRole(ctx context.Context, roleID string) (*authz.GlobalRole, error) {
	value, found, err := s.store.Get(ctx, store.GlobalRoleKey(roleID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var role authz.GlobalRole
	if err := json.Unmarshal([]byte(value), &role); err != nil {
		return nil, fmt.Errorf("corrupt global role record %s: %w", roleID, err)
	}
	return &role, nil
}

// ListGlobalRoles returns every global role, sorted by id
func (s *Service) ListGlobalRoles(ctx context.Context) ([]authz.GlobalRole, error) {
	ids, err := s.roleIDs(ctx)
	if err != nil {
		return nil, err
	}

	roles := make([]authz.GlobalRole, 0, len(ids))
	for _, id := range ids {
		role, err := s.GetGlobalRole(ctx, id)
		if err != nil {
			return nil, err
		}
		if role != nil {
			roles = append(roles, *role)
		}
	}
	return roles, nil
}

// SaveGlobalRole creates or updates a role definition and registers its id in
// the role catalog. A role may carry an empty grant set, which means "no
// global access".
func (s *Service) SaveGlobalRole(ctx context.Context, role *authz.GlobalRole) error {
	if role.ID == "" {
		return fmt.Errorf("global role id is required")
	}
	if role.Grants == nil {
		role.Grants = []authz.Grant{}
	}
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	data, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("marshal global role %s: %w", role.ID, err)
	}
	if err := s.store.Set(ctx, store.GlobalRoleKey(role.ID), string(data)); err != nil {
		return err
	}

	ids, err := s.roleIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == role.ID {
			return nil
		}
	}
	ids = append(ids, role.ID)
	sort.Strings(ids)
	return s.saveRoleIDs(ctx, ids)
}

// DeleteGlobalRole removes a role definition, its catalog entry, and all of
// its user assignments. Deleting an unknown role is a no-op.
func (s *Service) DeleteGlobalRole(ctx context.Context, roleID string) error {
	if err := s.store.Delete(ctx, store.GlobalRoleKey(roleID)); err != nil {
		return err
	}

	ids, err := s.roleIDs(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	if err := s.saveRoleIDs(ctx, kept); err != nil {
		return err
	}

	assignments, err := s.roleUsers(ctx)
	if err != nil {
		return err
	}
	if _, ok := assignments[roleID]; !ok {
		return nil
	}
	delete(assignments, roleID)
	return s.saveRoleUsers(ctx, assignments)
}

// AssignGlobalRole grants a role to a user. Assigning an already-assigned
// role is a no-op, so concurrent or repeated assignments converge.
func (s *Service) AssignGlobalRole(ctx context.Context, roleID, userID string) error {
	role, err := s.GetGlobalRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("global role %s not found", roleID)
	}

	assignments, err := s.roleUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range assignments[roleID] {
		if u == userID {
			return nil
		}
	}
	assignments[roleID] = append(assignments[roleID], userID)
	sort.Strings(assignments[roleID])
	return s.saveRoleUsers(ctx, assignments)
}

// RevokeGlobalRole removes a role assignment. Revoking an assignment that
// does not exist is a no-op, not an error.
func (s *Service) RevokeGlobalRole(ctx context.Context, roleID, userID string) error {
	assignments, err := s.roleUsers(ctx)
	if err != nil {
		return err
	}

	users, ok := assignments[roleID]
	if !ok {
		return nil
	}
	kept := users[:0]
	for _, u := range users {
		if u != userID {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return nil
	}
	if len(kept) == 0 {
		delete(assignments, roleID)
	} else {
		assignments[roleID] = kept
	}
	return s.saveRoleUsers(ctx, assignments)
}

// ListUserGlobalRoles scans the role-to-users reverse mapping and returns the
// user's effective global roles, sorted by role id. A user with no roles gets
// an empty slice.
func (s *Service) ListUserGlobalRoles(ctx context.Context, userID string) ([]authz.GlobalRole, error) {
	assignments, err := s.roleUsers(ctx)
	if err != nil {
		return nil, err
	}

	var roleIDs []string
	for roleID, users := range assignments {
		for _, u := range users {
			if u == userID {
				roleIDs = append(roleIDs, roleID)
				break
			}
		}
	}
	sort.Strings(roleIDs)

	roles := make([]authz.GlobalRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		role, err := s.GetGlobalRole(ctx, id)
		if err != nil {
			return nil, err
		}
		if role != nil {
			roles = append(roles, *role)
		}
	}
	return roles, nil
}

func (s *Service) roleIDs(ctx context.Context) ([]string, error) {
	value, found, err := s.store.Get(ctx, store.KeyGlobalRoles)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, fmt.Errorf("corrupt global role catalog: %w", err)
	}
	return ids, nil
}

func (s *Service) saveRoleIDs(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, store.KeyGlobalRoles, string(data))
}

func (s *Service) roleUsers(ctx context.Context) (map[string][]string, error) {
	value, found, err := s.store.Get(ctx, store.KeyGlobalRoleUsers)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string][]string{}, nil
	}
	var assignments map[string][]string
	if err := json.Unmarshal([]byte(value), &assignments); err != nil {
		return nil, fmt.Errorf("corrupt role-user mapping: %w", err)
	}
	return assignments, nil
}

func (s *Service) saveRoleUsers(ctx context.Context, assignments map[string][]string) error {
	data, err := json.Marshal(assignments)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, store.KeyGlobalRoleUsers, string(data))
}
