// Package roles owns global role definitions and global role-to-user
// assignments.
//
// Roles and assignments live in the shared key-value store under
// deterministic prefixed keys (see pkg/store): the role catalog under
// global:roles, the role-to-users reverse mapping under global:role:users,
// and each role record under role:global:<roleId>.
//
// Assignment and revocation are idempotent and commutative so concurrent
// writers never need transactional guarantees from the store: assigning twice
// equals assigning once, and revoking a missing assignment is a no-op.
package roles
