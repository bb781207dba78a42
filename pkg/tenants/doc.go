// Package tenants resolves tenants for inbound requests and tracks which
// tenants a user belongs to.
//
// A tenant (a "site" in the store schema) is immutable identity plus display
// metadata, looked up by slug, id, or hostname. The resolver maps a request
// to a tenant via the explicit X-Tenant-ID header first and the request
// hostname second; there is no fallback to a default tenant.
//
// Memberships are (user, tenant, role) triples. Absence of a membership is a
// normal nil result: the permission evaluator treats it as "no tenant-scoped
// grants", never as a fault.
package tenants
