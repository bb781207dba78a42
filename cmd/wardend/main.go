package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/wardenhq/warden/pkg/api"
	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/auth"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/roles"
	"github.com/wardenhq/warden/pkg/store"
	"github.com/wardenhq/warden/pkg/tenants"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		cfg.Store.OnRetry = func() { metrics.StoreRetriesTotal.Inc() }
	}

	kv, err := store.NewRedisStore(cfg.Store)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	logger.WithField("url", cfg.Store.URL).Info("connected to redis")

	tenantSvc := tenants.NewService(kv)
	memberships := tenants.NewMembershipService(kv, tenantSvc)
	roleSvc := roles.NewService(kv)
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

	server := api.NewServer(api.Config{
		Pipeline:    pipeline,
		Roles:       roleSvc,
		Memberships: memberships,
		Checker:     evaluator,
		Store:       kv,
		Audit:       recorder,
		Logger:      logger,
		Metrics:     metrics,
	})

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.Register(func(ctx context.Context) error {
		return kv.Close()
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("starting warden server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(shutdown.WaitForShutdown)

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}
