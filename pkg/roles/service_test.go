package roles

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/store"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := store.NewRedisStore(store.Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewService(s)
}

func adminRole() *authz.GlobalRole {
	return &authz.GlobalRole{
		ID:   "r-admin",
		Name: "platform-admin",
		Grants: []authz.Grant{
			{Resource: authz.ResourceRole, Permission: authz.PermissionRead},
			{Resource: authz.ResourceRole, Permission: authz.PermissionWrite},
		},
	}
}

func TestGetGlobalRoleMissing(t *testing.T) {
	svc := setupService(t)

	role, err := svc.GetGlobalRole(context.Background(), "r-nope")
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestSaveAndGetGlobalRole(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))

	role, err := svc.GetGlobalRole(ctx, "r-admin")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "platform-admin", role.Name)
	assert.Len(t, role.Grants, 2)
	assert.False(t, role.CreatedAt.IsZero())

	all, err := svc.ListGlobalRoles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r-admin", all[0].ID)

	// Saving again updates in place, no duplicate catalog entry.
	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))
	all, err = svc.ListGlobalRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveGlobalRoleEmptyGrants(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveGlobalRole(ctx, &authz.GlobalRole{ID: "r-empty", Name: "empty"}))

	role, err := svc.GetGlobalRole(ctx, "r-empty")
	require.NoError(t, err)
	require.NotNil(t, role)
	// Empty of grants, not empty of structure.
	assert.NotNil(t, role.Grants)
	assert.Empty(t, role.Grants)
}

func TestListUserGlobalRolesEmpty(t *testing.T) {
	svc := setupService(t)

	roles, err := svc.ListUserGlobalRoles(context.Background(), "u-nobody")
	require.NoError(t, err)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)
}

func TestAssignGlobalRoleIdempotent(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))

	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-1"))
	once, err := svc.ListUserGlobalRoles(ctx, "u-1")
	require.NoError(t, err)

	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-1"))
	twice, err := svc.ListUserGlobalRoles(ctx, "u-1")
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	require.Len(t, twice, 1)
	assert.Equal(t, "r-admin", twice[0].ID)
}

func TestAssignGlobalRoleUnknownRole(t *testing.T) {
	svc := setupService(t)

	err := svc.AssignGlobalRole(context.Background(), "r-ghost", "u-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRevokeGlobalRole(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))
	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-1"))
	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-2"))

	require.NoError(t, svc.RevokeGlobalRole(ctx, "r-admin", "u-1"))

	roles, err := svc.ListUserGlobalRoles(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, roles)

	// The other assignment is untouched.
	roles, err = svc.ListUserGlobalRoles(ctx, "u-2")
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestRevokeGlobalRoleUnassigned(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	// Revoking a never-assigned pair is a no-op, not an error.
	require.NoError(t, svc.RevokeGlobalRole(ctx, "r-ghost", "u-1"))

	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))
	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-2"))
	require.NoError(t, svc.RevokeGlobalRole(ctx, "r-admin", "u-1"))

	roles, err := svc.ListUserGlobalRoles(ctx, "u-2")
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestDeleteGlobalRole(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveGlobalRole(ctx, adminRole()))
	require.NoError(t, svc.AssignGlobalRole(ctx, "r-admin", "u-1"))

	require.NoError(t, svc.DeleteGlobalRole(ctx, "r-admin"))

	role, err := svc.GetGlobalRole(ctx, "r-admin")
	require.NoError(t, err)
	assert.Nil(t, role)

	roles, err := svc.ListUserGlobalRoles(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, roles)

	all, err := svc.ListGlobalRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
