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

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics"
	authhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/contact"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
	contenthandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/gateway/router"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/engine"
	searchhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/redis"
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
	slog.Info("starting learning hub server", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := content.LoadDefault(cfg.Content.Dir)
	if err != nil {
		slog.Error("failed to load content", "dir", cfg.Content.Dir, "error", err)
		os.Exit(1)
	}
	eng := engine.New(catalog)
	eng.Warm()
	slog.Info("content loaded", "topics", len(catalog.Topics()), "articles", catalog.Len())

	m := metrics.New(nil)
	m.CatalogArticles.Set(float64(catalog.Len()))
	checker := health.NewChecker()
	checker.Register("search_index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d articles indexed", eng.Size())}
	})

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.Connect(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			checker.RegisterPing("redis", false, redisClient.Ping)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, cfg.Analytics.BufferSize, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
		collector.Start(ctx)
		defer collector.Close()
		checker.RegisterPing("kafka", false, func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.Kafka.Brokers)
		})
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	var contactStore contact.Store = contact.NewMemoryStore()
	if cfg.Contact.Store == "postgres" {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx, contact.Schema...); err != nil {
			slog.Error("failed to migrate contact schema", "error", err)
			os.Exit(1)
		}
		contactStore = contact.NewPostgresStore(db)
		checker.RegisterPing("postgres", true, db.Ping)
		slog.Info("contact messages stored in postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	sessions := store.New()
	limiter := ratelimit.New(cfg.Auth.RateLimit, cfg.Auth.RateLimitWindow)
	go limiter.Run(ctx, cfg.Auth.RateLimitWindow)

	handler := router.New(router.Deps{
		Content:         contenthandler.New(catalog, eng, cfg.Catalog),
		Search:          searchhandler.New(eng, queryCache, collector, m, cfg.Search),
		Auth:            authhandler.New(sessions, collector, m),
		Contact:         contact.NewHandler(contactStore, collector, m),
		Sessions:        sessions,
		Limiter:         limiter,
		Health:          checker,
		Metrics:         m,
		CORS:            cfg.CORS,
		RequestTimeout:  cfg.Server.RequestTimeout,
		RateLimitWindow: cfg.Auth.RateLimitWindow,
	})

	if cfg.Metrics.Enabled {
		shutdownMetrics := m.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Shutdown returns once in-flight handlers finish; the deferred collector
	// and store closes must not run before that.
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

	slog.Info("learning hub listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-drained

	slog.Info("learning hub stopped")
}
