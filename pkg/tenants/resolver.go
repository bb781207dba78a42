package tenants

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/wardenhq/warden/pkg/authz"
)

// TenantHeader is the explicit tenant identifier header. Its value may be a
// tenant id or a slug.
const TenantHeader = "X-Tenant-ID"

// Resolver maps an inbound request to a tenant
type Resolver struct {
	tenants *Service
}

// NewResolver creates a request resolver over the tenant service
func NewResolver(tenants *Service) *Resolver {
	return &Resolver{tenants: tenants}
}

// Resolve finds the tenant for a request: the X-Tenant-ID header first, the
// request hostname second. An unresolvable request fails with
// authz.ErrTenantNotFound; callers must treat that as a 404-class condition,
// never fall back to a default tenant.
func (r *Resolver) Resolve(req *http.Request) (*Tenant, error) {
	ctx := req.Context()

	if ident := strings.TrimSpace(req.Header.Get(TenantHeader)); ident != "" {
		tenant, err := r.tenants.GetTenantByID(ctx, ident)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			tenant, err = r.tenants.GetTenantBySlug(ctx, ident)
			if err != nil {
				return nil, err
			}
		}
		if tenant == nil {
			return nil, fmt.Errorf("tenant %q: %w", ident, authz.ErrTenantNotFound)
		}
		return tenant, nil
	}

	host := req.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host != "" {
		tenant, err := r.tenants.GetTenantByHostname(ctx, host)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			return tenant, nil
		}
	}

	return nil, fmt.Errorf("host %q: %w", host, authz.ErrTenantNotFound)
}
