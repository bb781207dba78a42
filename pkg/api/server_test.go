package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/auth"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/roles"
	"github.com/wardenhq/warden/pkg/store"
	"github.com/wardenhq/warden/pkg/tenants"
)

// newTestServer wires a full server over miniredis with:
//   - tenant t-1 (slug acme, host acme.example.com)
//   - u-admin: global role r-roleadmin granting (role, read) and (role, write),
//     session tok-admin
//   - u-viewer: viewer membership in t-1, session tok-viewer
func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	kv, err := store.NewRedisStore(store.Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	ctx := context.Background()

	tenantSvc := tenants.NewService(kv)
	require.NoError(t, tenantSvc.SaveTenant(ctx, &tenants.Tenant{
		ID: "t-1", Slug: "acme", Name: "Acme", Hostname: "acme.example.com",
	}))

	memberships := tenants.NewMembershipService(kv, tenantSvc)
	require.NoError(t, memberships.AddMembership(ctx, "u-viewer", "t-1", authz.TenantRoleViewer))

	roleSvc := roles.NewService(kv)
	require.NoError(t, roleSvc.SaveGlobalRole(ctx, &authz.GlobalRole{
		ID:   "r-roleadmin",
		Name: "role-admin",
		Grants: []authz.Grant{
			{Resource: authz.ResourceRole, Permission: authz.PermissionRead},
			{Resource: authz.ResourceRole, Permission: authz.PermissionWrite},
			{Resource: authz.ResourceSettings, Permission: authz.PermissionRead},
		},
	}))
	require.NoError(t, roleSvc.AssignGlobalRole(ctx, "r-roleadmin", "u-admin"))

	require.NoError(t, kv.Set(ctx, store.SessionKey("tok-admin"), "u-admin"))
	require.NoError(t, kv.Set(ctx, store.SessionKey("tok-viewer"), "u-viewer"))
	require.NoError(t, kv.Set(ctx, store.UserKey("u-admin"), `{"id":"u-admin"}`))
	require.NoError(t, kv.Set(ctx, store.UserKey("u-viewer"), `{"id":"u-viewer"}`))

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	evaluator := authz.NewEvaluator(roleSvc, memberships)
	recorder := audit.NewStoreRecorder(kv)

	pipeline := middleware.NewPipeline(middleware.Deps{
		Resolver:    tenants.NewResolver(tenantSvc),
		Identity:    auth.NewSessionResolver(kv),
		Checker:     evaluator,
		Memberships: memberships,
		Audit:       recorder,
		Logger:      logger,
		Metrics:     metrics,
	})

	return NewServer(Config{
		Pipeline:    pipeline,
		Roles:       roleSvc,
		Memberships: memberships,
		Checker:     evaluator,
		Store:       kv,
		Audit:       recorder,
		Logger:      logger,
		Metrics:     metrics,
	})
}

func doRequest(s *Server, method, target, sessionToken string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Host = "acme.example.com"
	req.Header.Set(middleware.CSRFHeader, "csrf-token")
	if sessionToken != "" {
		req.Header.Set(auth.SessionHeader, sessionToken)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestDecisionEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("viewer allowed to read tenant", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/authz/decision?resource_type=tenant&permission=read", "tok-viewer", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp decisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Allowed)
	})

	t.Run("viewer denied tenant write", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/authz/decision?resource_type=tenant&permission=write", "tok-viewer", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp decisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Allowed)
	})

	t.Run("missing parameters", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/authz/decision", "tok-viewer", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires csrf", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/authz/decision?resource_type=tenant&permission=read", nil)
		req.Host = "acme.example.com"
		req.Header.Set(auth.SessionHeader, "tok-viewer")
		w := httptest.NewRecorder()
		s.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTenantNotFoundBeforePermissionCheck(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/roles", nil)
	req.Host = "acme.example.com"
	req.Header.Set(middleware.CSRFHeader, "csrf-token")
	req.Header.Set(auth.SessionHeader, "tok-admin")
	req.Header.Set(tenants.TenantHeader, "ghost-tenant")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Tenant not found", body["error"])
}

func TestMyTenants(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, "GET", "/api/v1/me/tenants", "tok-viewer", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tenants []tenants.Tenant `json:"tenants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tenants, 1)
	assert.Equal(t, "acme", resp.Tenants[0].Slug)

	// The admin has no memberships, only a global role.
	w = doRequest(s, "GET", "/api/v1/me/tenants", "tok-admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Tenants)
}

func TestRoleAdministration(t *testing.T) {
	s := newTestServer(t)

	t.Run("admin can create and read roles", func(t *testing.T) {
		body := `{"name":"support","grants":[{"resource":"user","permission":"read"}]}`
		w := doRequest(s, "PUT", "/api/v1/roles/r-support", "tok-admin", body)
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(s, "GET", "/api/v1/roles/r-support", "tok-admin", "")
		require.Equal(t, http.StatusOK, w.Code)

		var role authz.GlobalRole
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &role))
		assert.Equal(t, "r-support", role.ID)
		assert.Equal(t, "support", role.Name)
		require.Len(t, role.Grants, 1)
	})

	t.Run("admin can assign and revoke", func(t *testing.T) {
		w := doRequest(s, "POST", "/api/v1/roles/r-roleadmin/users/u-2", "tok-admin", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(s, "DELETE", "/api/v1/roles/r-roleadmin/users/u-2", "tok-admin", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("assign to unknown role is 404", func(t *testing.T) {
		w := doRequest(s, "POST", "/api/v1/roles/r-ghost/users/u-2", "tok-admin", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("viewer cannot administer roles", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/roles", "tok-viewer", "")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(s, "PUT", "/api/v1/roles/r-evil", "tok-viewer", `{"name":"evil"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated caller gets 401", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/roles", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown role is 404", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/roles/r-ghost", "tok-admin", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSetupRequired(t *testing.T) {
	t.Run("users exist", func(t *testing.T) {
		s := newTestServer(t)
		w := doRequest(s, "GET", "/api/v1/setup/required", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp["setup_required"])
	})

	t.Run("fresh install", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)

		kv, err := store.NewRedisStore(store.Config{URL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { kv.Close() })

		logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
		tenantSvc := tenants.NewService(kv)
		memberships := tenants.NewMembershipService(kv, tenantSvc)
		roleSvc := roles.NewService(kv)
		evaluator := authz.NewEvaluator(roleSvc, memberships)
		s := NewServer(Config{
			Pipeline: middleware.NewPipeline(middleware.Deps{
				Resolver: tenants.NewResolver(tenantSvc),
				Identity: auth.NewSessionResolver(kv),
				Checker:  evaluator,
				Logger:   logger,
			}),
			Roles:       roleSvc,
			Memberships: memberships,
			Checker:     evaluator,
			Store:       kv,
			Logger:      logger,
		})

		w := doRequest(s, "GET", "/api/v1/setup/required", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp["setup_required"])
	})
}

func TestAuditTrail(t *testing.T) {
	s := newTestServer(t)

	// A guarded request leaves a trail entry.
	w := doRequest(s, "GET", "/api/v1/roles", "tok-admin", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, "GET", "/api/v1/audit/events", "tok-admin", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events []audit.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Events)
	assert.Equal(t, "u-admin", resp.Events[0].UserID)
	assert.Equal(t, "t-1", resp.Events[0].TenantID)
	assert.True(t, resp.Events[0].Allowed)

	t.Run("viewer denied", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/audit/events", "tok-viewer", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := doRequest(s, "GET", "/api/v1/audit/events?limit=zero", "tok-admin", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(s, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
