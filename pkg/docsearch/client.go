package docsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/repository/blob"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/memcache"
	"github.com/kailas-cloud/docsearch/internal/repository/pgdocument"
	"github.com/kailas-cloud/docsearch/internal/repository/searchcache"
	ucache "github.com/kailas-cloud/docsearch/internal/usecase/cache"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultExpiryGrace      = time.Minute
)

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, q query.Query) (result.Response, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Warmup(ctx context.Context, queries []query.Query) domcache.WarmupReport
}

type documentUseCase interface {
	Upload(ctx context.Context, in documentuc.Upload) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction) (documentuc.Listing, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (domdoc.Document, []byte, error)
}

type cacheUseCase interface {
	Stats(ctx context.Context) (domcache.Stats, error)
	PopularQueries(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error)
	RecentQueries(ctx context.Context, limit int) ([]domcache.RecentQuery, error)
	Clear(ctx context.Context) (int, error)
	InvalidateByPattern(ctx context.Context, pattern string) (int, error)
	CleanupExpired(ctx context.Context) (int, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// documentStore is a document backend that is also the relevance engine.
type documentStore interface {
	documentuc.Repository
	searchuc.Engine
	searchuc.TextSource
	searchuc.TitleSuggester
}

// Client is the docsearch SDK entry point.
type Client struct {
	searchSvc searchUseCase
	docSvc    documentUseCase
	cacheSvc  cacheUseCase
	healthSvc healthUseCase
	obs       *observer

	closers []func()
	stop    context.CancelFunc
	done    chan struct{}
}

// New creates a Client, connects to the document store and opens the blob file.
// The provided context bounds the initial readiness check and migrations.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	if err := c.wire(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) wire(ctx context.Context, cfg *clientConfig) error {
	docs, dbPinger, store, err := c.openDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}

	var backend ucache.Backend
	if cfg.redisCache() {
		backend = searchcache.New(store, cfg.keyPrefix, defaultExpiryGrace)
	} else {
		mem, err := memcache.New(cfg.maxEntries)
		if err != nil {
			return fmt.Errorf("docsearch: create memory cache: %w", err)
		}
		backend = mem
	}
	cacheSvc := ucache.New(backend, cfg.cacheTTL, cfg.logger)

	blobs, err := blob.Open(cfg.blobPath)
	if err != nil {
		return fmt.Errorf("docsearch: open blob store: %w", err)
	}
	c.closers = append(c.closers, func() { _ = blobs.Close() })

	c.searchSvc = searchuc.New(docs, docs, docs, cacheSvc, cfg.logger).WithTTL(cfg.cacheTTL)
	c.docSvc = documentuc.New(docs, blobs, cacheSvc, cfg.logger).WithMaxUploadBytes(cfg.maxUploadBytes)
	c.cacheSvc = cacheSvc
	c.healthSvc = healthuc.New(dbPinger, cfg.logger).WithCheck("blob_store", blobs)

	c.startSweeper(ucache.NewSweeper(cacheSvc, cfg.cleanupInterval, cfg.logger))
	return nil
}

func (c *Client) openDocumentStore(
	ctx context.Context, cfg *clientConfig,
) (documentStore, healthuc.Pinger, *dbRedis.Store, error) {
	switch cfg.driver {
	case driverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("docsearch: create redis store: %w", err)
		}
		c.closers = append(c.closers, store.Close)

		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return nil, nil, nil, fmt.Errorf("docsearch: database not ready: %w", err)
		}
		repo := documentrepo.New(store, cfg.keyPrefix)
		if err := repo.EnsureIndex(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("docsearch: ensure index: %w", err)
		}
		return repo, store, store, nil

	case driverPostgres:
		if err := postgres.Migrate(cfg.dsn, cfg.logger); err != nil {
			return nil, nil, nil, fmt.Errorf("docsearch: migrate: %w", err)
		}
		pool, err := postgres.Connect(ctx, cfg.dsn, cfg.logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("docsearch: connect: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		return pgdocument.New(pool), pool, nil, nil

	case "":
		return nil, nil, nil, errors.New("docsearch: document store required (use WithRedis or WithPostgres)")
	default:
		return nil, nil, nil, fmt.Errorf("docsearch: unknown driver %q", cfg.driver)
	}
}

func (c *Client) startSweeper(sw *ucache.Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	c.stop = cancel
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		_ = sw.Run(ctx)
	}()
}

// Close stops the background sweeper and releases all resources.
func (c *Client) Close() {
	if c.stop != nil {
		c.stop()
		<-c.done
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Health checks the document store and the blob store.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component -> "ok"/"error"
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Cache returns the result cache service.
func (c *Client) Cache() *CacheService {
	return &CacheService{svc: c.cacheSvc, search: c.searchSvc, obs: c.obs}
}
