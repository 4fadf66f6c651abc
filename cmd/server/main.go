package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	jwttoken "schemeportal/internal/jwt_token"
	"schemeportal/internal/platform/config"
	"schemeportal/internal/platform/database"
	"schemeportal/internal/platform/health"
	"schemeportal/internal/platform/httpserver"
	"schemeportal/internal/platform/kafka"
	"schemeportal/internal/platform/kafka/producer"
	"schemeportal/internal/platform/logger"
	"schemeportal/internal/platform/redis"
	"schemeportal/internal/seeder"
	"schemeportal/pkg/platform/audit"
	auditmetrics "schemeportal/pkg/platform/audit/metrics"
	outboxmetrics "schemeportal/pkg/platform/audit/outbox/metrics"
	outboxpg "schemeportal/pkg/platform/audit/outbox/store/postgres"
	"schemeportal/pkg/platform/audit/outbox/worker"
	"schemeportal/pkg/platform/audit/publisher"
)

const (
	shutdownTimeout  = 15 * time.Second
	metricsInterval  = 15 * time.Second
	outboxRetention  = 7 * 24 * time.Hour
	outboxCleanEvery = time.Hour
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing scheme portal",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"database", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", cfg.Kafka.Enabled(),
	)

	healthHandler := health.New(cfg.Environment)

	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if pool != nil {
		defer pool.Close() //nolint:errcheck // shutdown path
		healthHandler.RegisterCheck("postgres", pool.Health)
		if err := pool.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register database metrics: %w", err)
		}
		if cfg.Database.AutoMigrate {
			applied, err := database.Migrate(ctx, pool.DB())
			if err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			log.Info("database schema up to date", "applied", applied)
		}
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
		healthHandler.RegisterOptionalCheck("redis", redisClient.Health)
	}

	st := newStores(pool)

	var outboxStore *outboxpg.Store
	if pool != nil && cfg.Kafka.Enabled() {
		outboxStore = outboxpg.New(pool.DB())
	}
	auditPublisher := publisher.NewPublisher(
		newAuditStore(pool, outboxStore),
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithPublisherLogger(log),
		publisher.WithPublisherMetrics(auditmetrics.New()),
	)
	defer auditPublisher.Close()
	auditor := audit.NewLogger(log, auditPublisher)

	if cfg.SeedDemoData {
		if pool != nil || cfg.IsProduction() {
			log.Warn("demo data is only seeded into in-memory stores; skipping")
		} else if err := seeder.New(st.schemes, st.staff, st.insights, log).SeedAll(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	svcs := newServices(st, auditor, redisClient, cfg, log)
	router := newRouter(cfg, svcs, jwttoken.NewJWTServiceAdapter(jwtService), healthHandler, log)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if outboxStore != nil {
		prod, err := producer.New(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer prod.Close() //nolint:errcheck // shutdown path

		checker, err := kafka.NewHealthChecker(kafka.SplitBrokers(cfg.Kafka.Brokers))
		if err != nil {
			return fmt.Errorf("create kafka health checker: %w", err)
		}
		defer checker.Close()
		healthHandler.RegisterOptionalCheck(checker.Name(), checker.Check)

		w := worker.New(outboxStore, prod,
			worker.WithTopic(cfg.Kafka.AuditTopic),
			worker.WithMetrics(outboxmetrics.New()),
			worker.WithLogger(log),
		)
		w.Start()
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return w.Stop(stopCtx)
		})
		g.Go(func() error {
			return tick(gctx, metricsInterval, func(ctx context.Context) {
				if err := w.UpdateMetrics(ctx); err != nil {
					log.WarnContext(ctx, "outbox metrics update failed", "error", err)
				}
			})
		})
		g.Go(func() error {
			return tick(gctx, outboxCleanEvery, func(ctx context.Context) {
				n, err := outboxStore.DeleteProcessedBefore(ctx, time.Now().Add(-outboxRetention))
				if err != nil {
					log.WarnContext(ctx, "outbox cleanup failed", "error", err)
					return
				}
				if n > 0 {
					log.InfoContext(ctx, "outbox cleanup", "deleted", n)
				}
			})
		})
		log.Info("audit outbox worker started", "topic", cfg.Kafka.AuditTopic)
	} else if cfg.Kafka.Enabled() {
		log.Warn("kafka configured without a database; audit events stay local")
	}

	if redisClient != nil {
		g.Go(func() error {
			return tick(gctx, metricsInterval, func(context.Context) {
				redisClient.RecordPoolStats()
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// tick runs fn every interval until ctx is done.
func tick(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn(ctx)
		}
	}
}
