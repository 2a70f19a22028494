package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminaudithandler "vigil/internal/adminaudit/handler"
	auditmetrics "vigil/internal/adminaudit/metrics"
	adminauditservice "vigil/internal/adminaudit/service"
	adminauditstore "vigil/internal/adminaudit/store"
	autheventhandler "vigil/internal/authevent/handler"
	authmetrics "vigil/internal/authevent/metrics"
	"vigil/internal/authevent/recorder"
	"vigil/internal/authevent/stats"
	autheventstore "vigil/internal/authevent/store"
	"vigil/internal/detect"
	detectmetrics "vigil/internal/detect/metrics"
	"vigil/internal/platform/config"
	"vigil/internal/platform/database"
	"vigil/internal/platform/health"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/middleware"
	"vigil/internal/platform/privacy"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing vigil",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"retention_days", cfg.RetentionDays,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	// With no database configured the in-memory stores keep local development
	// and tests working; production always sets VIGIL_DATABASE_URL.
	var (
		eventStore interface {
			recorder.EventStore
			stats.EventReader
			detect.AggregateReader
		}
		auditStore adminauditservice.Store
	)
	if pool != nil {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := pool.Migrate(migrateCtx); err != nil {
			cancel()
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		cancel()

		db := pool.DB()
		eventStore = autheventstore.NewPostgres(db)
		auditStore = adminauditstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		eventStore = autheventstore.NewInMemory()
		auditStore = adminauditstore.NewInMemory()
		log.Warn("no database configured, using in-memory stores")
	}

	hasher := privacy.NewIPHasher(cfg.IPHashPepper)

	rec, err := recorder.New(eventStore, hasher,
		recorder.WithLogger(log),
		recorder.WithMetrics(authmetrics.New()),
	)
	if err != nil {
		log.Error("recorder init failed", "error", err)
		os.Exit(1)
	}

	statsSvc, err := stats.New(eventStore, stats.WithLogger(log))
	if err != nil {
		log.Error("stats service init failed", "error", err)
		os.Exit(1)
	}

	detector, err := detect.New(eventStore,
		detect.WithLogger(log),
		detect.WithMetrics(detectmetrics.New()),
	)
	if err != nil {
		log.Error("detector init failed", "error", err)
		os.Exit(1)
	}

	auditSvc, err := adminauditservice.New(auditStore,
		adminauditservice.WithLogger(log),
		adminauditservice.WithMetrics(auditmetrics.New()),
	)
	if err != nil {
		log.Error("audit service init failed", "error", err)
		os.Exit(1)
	}

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.AuditTimeout))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.JWTSigningKey, log))
		r.Use(middleware.ContentTypeJSON)
		autheventhandler.New(rec, statsSvc, detector, log).Register(r)
		adminaudithandler.New(auditSvc, log).Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AuditTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	retentionDone := make(chan struct{})
	go runRetention(auditSvc, cfg.RetentionDays, log, retentionDone)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")
	close(retentionDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if err := pool.Close(); err != nil {
		log.Error("database close failed", "error", err)
	}

	log.Info("server stopped")
}

// runRetention purges expired admin audit logs once a day. Failures are
// logged and retried on the next tick; they never take the service down.
func runRetention(svc *adminauditservice.Service, retentionDays int, log *slog.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			deleted, err := svc.PurgeOldLogs(ctx, retentionDays)
			cancel()
			if err != nil {
				log.Error("retention purge failed", "error", err)
				continue
			}
			log.Info("retention purge completed", "deleted", deleted, "retention_days", retentionDays)
		}
	}
}
