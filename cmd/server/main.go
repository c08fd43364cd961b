// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"muster/internal/audit"
	auditmemory "muster/internal/audit/store/memory"
	auditpostgres "muster/internal/audit/store/postgres"
	"muster/internal/badge"
	checkinhandler "muster/internal/checkin/handler"
	checkinmetrics "muster/internal/checkin/metrics"
	"muster/internal/checkin/service"
	attendancestore "muster/internal/checkin/store/attendance"
	eventstore "muster/internal/checkin/store/event"
	sessionstore "muster/internal/checkin/store/session"
	"muster/internal/jwtauth"
	"muster/internal/platform/config"
	"muster/internal/platform/httpserver"
	"muster/internal/platform/logger"
	"muster/internal/platform/metrics"
	"muster/internal/platform/middleware"
	"muster/internal/platform/postgres"
	platformredis "muster/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(os.Getenv("MUSTER_LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores. Without a database URL the service runs on in-memory stores,
	// which is only useful for local development.
	var (
		events     service.EventStore
		sessions   service.SessionStore
		attendance service.AttendanceStore
		auditStore audit.Store
	)
	if cfg.Postgres.URL != "" {
		db, err := postgres.Open(cfg.Postgres)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		events = eventstore.NewPostgres(db)
		sessions = sessionstore.NewPostgres(db)
		attendance = attendancestore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("no MUSTER_POSTGRES_URL set, using in-memory stores")
		events = eventstore.NewInMemoryStore()
		sessions = sessionstore.NewInMemoryStore()
		attendance = attendancestore.NewInMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
	}

	// Audit pipeline: non-blocking publisher, background worker.
	auditInbox := make(chan audit.Event, cfg.AuditInboxSize)
	auditPublisher := audit.NewPublisher(auditInbox, log)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	// Badge dispatch: best-effort, never on the request path.
	var notifier badge.Notifier = badge.NoopNotifier{}
	if cfg.Badge.URL != "" {
		notifier = badge.NewHTTPNotifier(cfg.Badge.URL, cfg.Badge.Timeout)
	}
	badges := badge.NewDispatcher(notifier, cfg.Badge.InboxSize, log, badge.NewMetrics())
	go func() {
		if err := badges.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("badge dispatcher stopped", "error", err)
		}
	}()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(checkinmetrics.New()),
		service.WithBadgeDispatcher(badges),
		service.WithAuditPublisher(auditPublisher),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts = append(opts, service.WithRecordCache(attendancestore.NewRedisCache(redisClient.Client)))
	}

	checkins := service.New(events, sessions, attendance, opts...)
	handler := checkinhandler.New(checkins, log)

	validator := jwtauth.NewValidator(cfg.Server.JWTSigningKey, "muster")
	appMetrics := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, appMetrics))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireVolunteer(validator, log))
		handler.Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting muster", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
