package store

import "fmt"

// Key schema. Every record the authorization core owns lives under one of
// these deterministic keys so role data, role-user mappings, tenant records,
// and memberships never collide.
//
//	global:roles                   JSON array of global role ids
//	global:role:users              JSON object: role id -> array of user ids
//	role:global:<roleId>           serialized GlobalRole
//	site:slug:<slug>               serialized Tenant, keyed by slug
//	site:id:<tenantId>             serialized Tenant, keyed by id
//	site:host:<hostname>           tenant id for hostname resolution
//	membership:<userId>:<tenantId> serialized TenantMembership
//	session:<token>                user id for an issued session
//	user:<userId>                  serialized user record (existence scan)
//	audit:<tenantId>:<eventId>     serialized audit event

const (
	KeyGlobalRoles     = "global:roles"
	KeyGlobalRoleUsers = "global:role:users"
)

// GlobalRoleKey returns the key holding a serialized global role
func GlobalRoleKey(roleID string) string {
	return "role:global:" + roleID
}

// SiteSlugKey returns the key holding a tenant record by slug
func SiteSlugKey(slug string) string {
	return "site:slug:" + slug
}

// SiteIDKey returns the key holding a tenant record by id
func SiteIDKey(tenantID string) string {
	return "site:id:" + tenantID
}

// SiteHostKey returns the key mapping a hostname to a tenant id
func SiteHostKey(hostname string) string {
	return "site:host:" + hostname
}

// MembershipKey returns the key holding a user's membership in a tenant
func MembershipKey(userID, tenantID string) string {
	return fmt.Sprintf("membership:%s:%s", userID, tenantID)
}

// MembershipPattern returns the scan pattern for all of a user's memberships
func MembershipPattern(userID string) string {
	return fmt.Sprintf("membership:%s:*", userID)
}

// SessionKey returns the key mapping a session token to a user id
func SessionKey(token string) string {
	return "session:" + token
}

// UserKey returns the key holding a user record
func UserKey(userID string) string {
	return "user:" + userID
}

// UserPattern is the existence-scan pattern answering "are there any users yet"
const UserPattern = "user:*"

// AuditEventKey returns the key holding a serialized audit event. Event ids
// start with a lexically sortable timestamp so key order is time order.
func AuditEventKey(tenantID, eventID string) string {
	return fmt.Sprintf("audit:%s:%s", tenantID, eventID)
}

// AuditPattern returns the scan pattern for a tenant's audit events
func AuditPattern(tenantID string) string {
	return fmt.Sprintf("audit:%s:*", tenantID)
}
