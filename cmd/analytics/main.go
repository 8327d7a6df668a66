// Command analytics consumes learning hub events from Kafka, aggregates them
// in memory and serves the totals at GET /api/analytics. When PostgreSQL is
// reachable the aggregate is restored from and periodically saved to
// analytics_snapshots.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Analytics.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	checker := health.NewChecker()

	var saved <-chan struct{}
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		if err := db.Migrate(ctx, aggregator.Schema...); err != nil {
			slog.Error("failed to migrate analytics schema", "error", err)
			os.Exit(1)
		}
		snapshots := aggregator.NewStore(db)
		latest, err := snapshots.LatestSnapshot(ctx)
		switch {
		case err != nil:
			slog.Warn("failed to load latest snapshot", "error", err)
		case latest != nil:
			agg.Restore(*latest)
			slog.Info("aggregate restored from snapshot", "total_searches", latest.TotalSearches)
		}
		saved = snapshots.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		checker.RegisterPing("postgres", false, db.Ping)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, agg.HandleEvent)
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	checker.Register("consumer", func(ctx context.Context) health.ComponentHealth {
		processed, rejected := consumer.Counts()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d processed, %d rejected", processed, rejected),
		}
	})
	checker.RegisterPing("kafka", true, func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	})
	slog.Info("analytics consumer started", "topic", cfg.Kafka.Topics.AnalyticsEvents, "group", cfg.Kafka.ConsumerGroup)

	h := analytics.NewHandler(agg)
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Get("/api/analytics", h.Stats)
	r.Get("/health/live", checker.LiveHandler())
	r.Get("/health/ready", checker.ReadyHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Analytics.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-drained

	if saved != nil {
		<-saved
	}
	slog.Info("analytics service stopped")
}
