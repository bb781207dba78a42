package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/roles"
	"github.com/wardenhq/warden/pkg/store"
	"github.com/wardenhq/warden/pkg/tenants"
)

// Server routes the Warden HTTP API
type Server struct {
	router      *mux.Router
	pipeline    *middleware.Pipeline
	roles       *roles.Service
	memberships *tenants.MembershipService
	checker     authz.Checker
	store       store.Store
	audit       audit.Recorder
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// Config bundles the server's collaborators
type Config struct {
	Pipeline    *middleware.Pipeline
	Roles       *roles.Service
	Memberships *tenants.MembershipService
	Checker     authz.Checker
	Store       store.Store
	Audit       audit.Recorder
	Logger      *observability.Logger
	Metrics     *observability.Metrics
}

// NewServer creates the API server and registers all routes
func NewServer(cfg Config) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		pipeline:    cfg.Pipeline,
		roles:       cfg.Roles,
		memberships: cfg.Memberships,
		checker:     cfg.Checker,
		store:       cfg.Store,
		audit:       cfg.Audit,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))
	if s.logger != nil {
		s.router.Use(mux.MiddlewareFunc(middleware.RequestLogger(s.logger)))
	}
	if s.metrics != nil {
		s.router.Use(mux.MiddlewareFunc(middleware.HTTPMetrics(s.metrics)))
	}

	// Unauthenticated surface.
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/setup/required", s.handleSetupRequired).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	// Tenant + identity, no permission requirement.
	secure := s.pipeline.SecureTenantContext()
	s.router.Handle("/api/v1/authz/decision", secure(http.HandlerFunc(s.handleDecision))).Methods("GET")
	s.router.Handle("/api/v1/me/tenants", secure(http.HandlerFunc(s.handleMyTenants))).Methods("GET")

	// Role administration. Reads need (role, read); mutations need (role, write).
	roleRead := s.pipeline.SecureTenantPermission(authz.ResourceRole, authz.PermissionRead)
	roleWrite := s.pipeline.SecureTenantPermission(authz.ResourceRole, authz.PermissionWrite)

	s.router.Handle("/api/v1/roles", roleRead(http.HandlerFunc(s.handleListRoles))).Methods("GET")
	s.router.Handle("/api/v1/roles/{role_id}", roleRead(http.HandlerFunc(s.handleGetRole))).Methods("GET")
	s.router.Handle("/api/v1/roles/{role_id}", roleWrite(http.HandlerFunc(s.handleSaveRole))).Methods("PUT")
	s.router.Handle("/api/v1/roles/{role_id}", roleWrite(http.HandlerFunc(s.handleDeleteRole))).Methods("DELETE")
	s.router.Handle("/api/v1/roles/{role_id}/users/{user_id}", roleWrite(http.HandlerFunc(s.handleAssignRole))).Methods("POST")
	s.router.Handle("/api/v1/roles/{role_id}/users/{user_id}", roleWrite(http.HandlerFunc(s.handleRevokeRole))).Methods("DELETE")

	// The audit trail reads as tenant settings.
	if s.audit != nil {
		settingsRead := s.pipeline.SecureTenantPermission(authz.ResourceSettings, authz.PermissionRead)
		s.router.Handle("/api/v1/audit/events", settingsRead(http.HandlerFunc(s.handleAuditEvents))).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
