package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrgate/internal/platform/config"
	"hrgate/internal/platform/httpserver"
	"hrgate/internal/platform/logger"
	platformmetrics "hrgate/internal/platform/metrics"
	"hrgate/internal/platform/middleware"
	"hrgate/internal/platform/postgres"
	platformredis "hrgate/internal/platform/redis"
	"hrgate/internal/platform/token"
	"hrgate/internal/roledetect"
	verifyhandler "hrgate/internal/verify/handler"
	verifymetrics "hrgate/internal/verify/metrics"
	"hrgate/internal/verify/ports"
	verifyservice "hrgate/internal/verify/service"
	"hrgate/internal/verify/store/profile"
	"hrgate/pkg/platform/audit"
	auditmemory "hrgate/pkg/platform/audit/store/memory"
	auditpostgres "hrgate/pkg/platform/audit/store/postgres"

	"hrgate/pkg/platform/audit/publisher"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Storage. Both stores fall back to in-memory when no DSN is configured,
	// which keeps local development and CI free of infrastructure.
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres setup failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	var profileStore ports.ProfileStore
	var auditStore audit.Store
	if pool != nil {
		profileStore = profile.NewPostgresStore(pool)

		auditDB, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("audit store setup failed", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()
		auditStore = auditpostgres.New(auditDB)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		profileStore = profile.NewMemoryStore()
		auditStore = auditmemory.NewInMemoryStore()
	}

	// Audit pipeline: durable store-backed publisher, plus Kafka when brokers
	// are configured.
	auditPub := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		publisher.WithLogger(log),
	)
	defer auditPub.Close()

	sinks := []ports.AuditPublisher{auditPub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		sinks = append(sinks, kafkaPub)
	}

	// Verification engine.
	vMetrics := verifymetrics.New()
	source, err := profile.NewSource(profileStore, vMetrics)
	if err != nil {
		log.Error("profile source setup failed", "error", err)
		os.Exit(1)
	}

	var profiles ports.ProfileSource = source
	cache, err := platformredis.Connect(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
		profiles = profile.NewCachedSource(source, cache, cfg.Redis.CacheTTL, log, vMetrics)
	}

	svc, err := verifyservice.New(profiles,
		verifyservice.WithLogger(log),
		verifyservice.WithMetrics(vMetrics),
		verifyservice.WithAuditPublisher(newTeePublisher(sinks...)),
	)
	if err != nil {
		log.Error("verification service setup failed", "error", err)
		os.Exit(1)
	}

	handler := verifyhandler.New(svc, roledetect.NewDetector(), newTeePublisher(sinks...), log)

	// HTTP surface.
	tokens := token.NewService(cfg.JWTSigningKey, "hrgate", "hr-portal")
	httpMetrics := platformmetrics.New()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(httpMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cache != nil {
			if err := cache.Ping(req.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		handler.Register(v1, middleware.RequireAuth(tokens, log))
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting hrgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("hrgate stopped")
}
