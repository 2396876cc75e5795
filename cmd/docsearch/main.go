package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	"github.com/kailas-cloud/docsearch/internal/repository/blob"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/memcache"
	"github.com/kailas-cloud/docsearch/internal/repository/pgdocument"
	"github.com/kailas-cloud/docsearch/internal/repository/searchcache"
	"github.com/kailas-cloud/docsearch/internal/telemetry"
	chiTransport "github.com/kailas-cloud/docsearch/internal/transport/chi"
	ucache "github.com/kailas-cloud/docsearch/internal/usecase/cache"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
	"github.com/kailas-cloud/docsearch/internal/version"
)

const serviceName = "docsearch"

// documentStore is a document backend that is also the relevance engine.
type documentStore interface {
	documentuc.Repository
	searchuc.Engine
	searchuc.TextSource
	searchuc.TitleSuggester
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:   cfg.Logging.Level,
		Service: serviceName,
		Version: version.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	// Redis backs the document store, the result cache, or both
	var store *dbRedis.Store
	if cfg.Database.Driver == config.DriverRedis || cfg.Cache.Backend == config.CacheRedis {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))
	}

	// Document store and relevance engine
	var (
		docs     documentStore
		dbPinger healthuc.Pinger
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if err := postgres.Migrate(cfg.Database.DSN, logger); err != nil {
			logger.Fatal("Database migration failed", zap.Error(err))
		}
		connectCtx, cancel := context.WithTimeout(ctx, readiness)
		pool, err := postgres.Connect(connectCtx, cfg.Database.DSN, logger)
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		docs = pgdocument.New(pool)
		dbPinger = pool
	default:
		repo := documentrepo.New(store, cfg.Storage.KeyPrefix)
		if err := repo.EnsureIndex(ctx); err != nil {
			logger.Fatal("Failed to create document index", zap.Error(err))
		}
		docs = repo
		dbPinger = store
	}

	// Result cache
	var backend ucache.Backend
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		backend = searchcache.New(store, cfg.Storage.KeyPrefix, cfg.ExpiryGrace())
	default:
		mem, err := memcache.New(cfg.Cache.MaxEntries)
		if err != nil {
			logger.Fatal("Failed to create memory cache", zap.Error(err))
		}
		backend = mem
	}
	cacheSvc := ucache.New(backend, cfg.CacheTTL(), logger).
		WithMetrics(metrics.CacheEventsTotal)

	blobs, err := blob.Open(cfg.Storage.BlobPath)
	if err != nil {
		logger.Fatal("Failed to open blob store", zap.Error(err), zap.String("path", cfg.Storage.BlobPath))
	}
	defer func() { _ = blobs.Close() }()

	// Use case services
	searchSvc := searchuc.New(docs, docs, docs, cacheSvc, logger).
		WithTTL(cfg.CacheTTL()).
		WithSnippet(cfg.Search.SnippetLength, cfg.Search.SnippetStep).
		WithMetrics(metrics.SearchDuration)
	docSvc := documentuc.New(docs, blobs, cacheSvc, logger).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize).
		WithMaxUploadBytes(cfg.Storage.MaxUploadBytes).
		WithMetrics(metrics.DocumentsUploadedTotal)

	healthSvc := healthuc.New(dbPinger, logger).WithCheck("blob_store", blobs)
	if cfg.Database.Driver != config.DriverRedis && cfg.Cache.Backend == config.CacheRedis {
		healthSvc = healthSvc.WithCheck("cache", store)
	}

	// Create chi server
	server := chiTransport.NewServer(searchSvc, cacheSvc, docSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.Tracing(nil))
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	sweeper := ucache.NewSweeper(cacheSvc, cfg.CleanupInterval(), logger).
		WithMetrics(metrics.CacheSweepRemovedTotal)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	g.Go(func() error {
		warmup(gctx, searchSvc, cfg.Cache.WarmupQueries, cfg.Search.DefaultPageSize, logger)
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Server stopped gracefully")
}

// warmup pre-generates the first natural-mode page of each configured query.
func warmup(ctx context.Context, svc *searchuc.Service, texts []string, limit int, logger *zap.Logger) {
	if len(texts) == 0 {
		return
	}

	queries := make([]query.Query, 0, len(texts))
	for _, text := range texts {
		q, err := query.New(text, 1, limit, ordering.Relevance, ordering.Desc, mode.Natural)
		if err != nil {
			logger.Warn("Skipping warmup query", zap.String("query", text), zap.Error(err))
			continue
		}
		queries = append(queries, q)
	}

	report := svc.Warmup(ctx, queries)
	logger.Info("Search cache warmed",
		zap.Int("warmed", report.Warmed),
		zap.Int("failed", report.Failed),
	)
}
