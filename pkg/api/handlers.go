package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/store"
)

// handleHealth answers liveness probes
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSetupRequired reports whether any user exists yet, for first-run
// setup flows. It scans the user:* prefix; no record means a fresh install.
func (s *Server) handleSetupRequired(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.Keys(r.Context(), store.UserPattern)
	if err != nil {
		s.logger.WithError(err).Error("setup probe failed")
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]bool{"setup_required": len(keys) == 0})
}

// decisionResponse is what guard components consume
type decisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// handleDecision answers a read-only permission question for the calling
// user in the resolved tenant. UI guards render allowed or fallback content
// from this; enforcement stays with the middleware on the mutating routes.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthorizationContext(r)

	query := r.URL.Query()
	resource := authz.ResourceType(query.Get("resource_type"))
	permission := authz.Permission(query.Get("permission"))
	if resource == "" || permission == "" {
		httputil.WriteBadRequest(w, "resource_type and permission are required")
		return
	}

	decision, err := s.checker.Check(r.Context(), authz.Check{
		UserID:     authCtx.UserID,
		TenantID:   authCtx.Tenant.ID,
		Resource:   resource,
		Permission: permission,
		ResourceID: query.Get("resource_id"),
	})
	if err != nil {
		s.logger.WithError(err).WithTenant(authCtx.Tenant.ID).Error("decision endpoint check failed")
		httputil.WriteAuthzError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordDecision(decision.Allowed)
	}

	httputil.WriteSuccess(w, decisionResponse{Allowed: decision.Allowed, Reason: decision.Reason})
}

// handleMyTenants lists the calling user's tenants for switcher UIs
func (s *Server) handleMyTenants(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthorizationContext(r)

	list, err := s.memberships.GetUserTenants(r.Context(), authCtx.UserID)
	if err != nil {
		s.logger.WithError(err).WithUser(authCtx.UserID).Error("listing user tenants failed")
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"tenants": list})
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	list, err := s.roles.ListGlobalRoles(r.Context())
	if err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"roles": list})
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	roleID := mux.Vars(r)["role_id"]

	role, err := s.roles.GetGlobalRole(r.Context(), roleID)
	if err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	if role == nil {
		httputil.WriteNotFound(w, "Role not found")
		return
	}
	httputil.WriteSuccess(w, role)
}

func (s *Server) handleSaveRole(w http.ResponseWriter, r *http.Request) {
	roleID := mux.Vars(r)["role_id"]

	var role authz.GlobalRole
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		httputil.WriteBadRequest(w, "invalid role body")
		return
	}
	role.ID = roleID

	if err := s.roles.SaveGlobalRole(r.Context(), &role); err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteSuccess(w, role)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := mux.Vars(r)["role_id"]

	if err := s.roles.DeleteGlobalRole(r.Context(), roleID); err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	role, err := s.roles.GetGlobalRole(r.Context(), vars["role_id"])
	if err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	if role == nil {
		httputil.WriteNotFound(w, "Role not found")
		return
	}

	if err := s.roles.AssignGlobalRole(r.Context(), vars["role_id"], vars["user_id"]); err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// defaultAuditPageSize caps an unqualified audit listing
const defaultAuditPageSize = 50

// handleAuditEvents lists the resolved tenant's decision trail, newest first
func (s *Server) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthorizationContext(r)

	limit := defaultAuditPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events, err := s.audit.ListTenantEvents(r.Context(), authCtx.Tenant.ID, limit)
	if err != nil {
		s.logger.WithError(err).WithTenant(authCtx.Tenant.ID).Error("listing audit events failed")
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"events": events})
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := s.roles.RevokeGlobalRole(r.Context(), vars["role_id"], vars["user_id"]); err != nil {
		httputil.WriteAuthzError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
