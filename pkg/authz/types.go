package authz

import (
	"time"
)

// ResourceType identifies a kind of resource a permission applies to
type ResourceType string

const (
	ResourceTenant   ResourceType = "tenant"
	ResourceUser     ResourceType = "user"
	ResourceRole     ResourceType = "role"
	ResourceContent  ResourceType = "content"
	ResourceSettings ResourceType = "settings"
)

// Permission identifies an operation on a resource type
type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionDelete Permission = "delete"
	PermissionInvite Permission = "invite"
)

// Grant is a single (resource, permission) pair conferred by a role
type Grant struct {
	Resource   ResourceType `json:"resource"`
	Permission Permission   `json:"permission"`
}

// String returns the canonical "resource:permission" form of the grant
func (g Grant) String() string {
	return string(g.Resource) + ":" + string(g.Permission)
}

// GlobalRole is a role whose grants apply across every tenant a user belongs
// to. The grant set may be empty, which means "no global access"; the
// structure itself is always present.
type GlobalRole struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grants    []Grant   `json:"grants"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasGrant reports whether the role grants (resource, permission)
func (r *GlobalRole) HasGrant(resource ResourceType, permission Permission) bool {
	for _, g := range r.Grants {
		if g.Resource == resource && g.Permission == permission {
			return true
		}
	}
	return false
}

// TenantRole is the name of a tenant-scoped role held through a membership
type TenantRole string

const (
	TenantRoleAdmin  TenantRole = "admin"
	TenantRoleEditor TenantRole = "editor"
	TenantRoleViewer TenantRole = "viewer"
)

// TenantMembership binds a user to a tenant with a single tenant-scoped role
type TenantMembership struct {
	UserID   string     `json:"user_id"`
	TenantID string     `json:"tenant_id"`
	Role     TenantRole `json:"role"`
	AddedAt  time.Time  `json:"added_at"`
}

// Check is a permission check request. ResourceID is optional and reserved
// for per-object ACL lookups; when empty only resource-type grants apply.
type Check struct {
	UserID     string       `json:"user_id"`
	TenantID   string       `json:"tenant_id"`
	Resource   ResourceType `json:"resource"`
	Permission Permission   `json:"permission"`
	ResourceID string       `json:"resource_id,omitempty"`
}

// Decision is the outcome of a permission check
type Decision struct {
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
	MatchedRoles []string  `json:"matched_roles,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// TenantRoleGrants returns the grant set for a built-in tenant role. Unknown
// role names yield an empty set, which denies everything.
func TenantRoleGrants(role TenantRole) []Grant {
	grants, ok := builtinTenantRoles[role]
	if !ok {
		return nil
	}
	return grants
}

// builtinTenantRoles is the closed tenant-role vocabulary. Extending it means
// redeploying the evaluator; roles are never defined per tenant at runtime.
var builtinTenantRoles = map[TenantRole][]Grant{
	TenantRoleAdmin: {
		{Resource: ResourceTenant, Permission: PermissionRead},
		{Resource: ResourceTenant, Permission: PermissionWrite},
		{Resource: ResourceTenant, Permission: PermissionDelete},
		{Resource: ResourceUser, Permission: PermissionRead},
		{Resource: ResourceUser, Permission: PermissionInvite},
		{Resource: ResourceUser, Permission: PermissionDelete},
		{Resource: ResourceContent, Permission: PermissionRead},
		{Resource: ResourceContent, Permission: PermissionWrite},
		{Resource: ResourceContent, Permission: PermissionDelete},
		{Resource: ResourceSettings, Permission: PermissionRead},
		{Resource: ResourceSettings, Permission: PermissionWrite},
	},
	TenantRoleEditor: {
		{Resource: ResourceTenant, Permission: PermissionRead},
		{Resource: ResourceUser, Permission: PermissionRead},
		{Resource: ResourceContent, Permission: PermissionRead},
		{Resource: ResourceContent, Permission: PermissionWrite},
		{Resource: ResourceSettings, Permission: PermissionRead},
	},
	TenantRoleViewer: {
		{Resource: ResourceTenant, Permission: PermissionRead},
		{Resource: ResourceContent, Permission: PermissionRead},
	},
}
