package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wardenhq/warden/pkg/store"
)

// Service reads and writes tenant records. Reads are on every request's hot
// path; writes happen only in administrative flows and test fixtures.
type Service struct {
	store store.Store
}

// NewService creates a tenant service over the given store
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// GetTenantBySlug returns a tenant by slug, or (nil, nil) when unknown
func (s *Service) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.load(ctx, store.SiteSlugKey(slug))
}

// GetTenantByID returns a tenant by id, or (nil, nil) when unknown
func (s *Service) GetTenantByID(ctx context.Context, tenantID string) (*Tenant, error) {
	return s.load(ctx, store.SiteIDKey(tenantID))
}

// GetTenantByHostname returns the tenant mapped to a hostname, or (nil, nil)
func (s *Service) GetTenantByHostname(ctx context.Context, hostname string) (*Tenant, error) {
	tenantID, found, err := s.store.Get(ctx, store.SiteHostKey(hostname))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return s.GetTenantByID(ctx, tenantID)
}

// SaveTenant writes a tenant record under its slug and id keys, plus the
// hostname mapping when one is set
func (s *Service) SaveTenant(ctx context.Context, tenant *Tenant) error {
	if tenant.ID == "" || tenant.Slug == "" {
		return fmt.Errorf("tenant id and slug are required")
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("marshal tenant %s: %w", tenant.ID, err)
	}
	if err := s.store.Set(ctx, store.SiteSlugKey(tenant.Slug), string(data)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.SiteIDKey(tenant.ID), string(data)); err != nil {
		return err
	}
	if tenant.Hostname != "" {
		if err := s.store.Set(ctx, store.SiteHostKey(tenant.Hostname), tenant.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, key string) (*Tenant, error) {
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var tenant Tenant
	if err := json.Unmarshal([]byte(value), &tenant); err != nil {
		return nil, fmt.Errorf("corrupt tenant record at %s: %w", key, err)
	}
	return &tenant, nil
}
