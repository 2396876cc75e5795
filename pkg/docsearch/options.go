package docsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	driverRedis    = "redis"
	driverPostgres = "postgres"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "postgres"
	addrs    []string
	password string
	dsn      string

	memoryCache     bool
	maxEntries      int
	cacheTTL        time.Duration
	cleanupInterval time.Duration

	keyPrefix      string
	blobPath       string
	maxUploadBytes int64

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		maxEntries: 10000,
		cacheTTL:   time.Hour,
		keyPrefix:  "docsearch:",
		blobPath:   "docsearch-blobs.db",
		logger:     zap.NewNop(),
	}
}

// redisCache reports whether result pages are cached in Redis.
func (c *clientConfig) redisCache() bool {
	return c.driver == driverRedis && !c.memoryCache
}

// WithRedis stores documents in a Redis 8+ instance with the Query Engine.
// Result pages are cached in the same instance unless WithMemoryCache is set.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPostgres stores documents in PostgreSQL. Migrations run on New.
// Result pages are cached in memory.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = dsn
	})
}

// WithMemoryCache keeps result pages in a bounded in-process LRU.
func WithMemoryCache(maxEntries int) Option {
	return optionFunc(func(c *clientConfig) {
		c.memoryCache = true
		if maxEntries > 0 {
			c.maxEntries = maxEntries
		}
	})
}

// WithCacheTTL sets the lifetime of cached result pages. Default: 1h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	})
}

// WithCleanupInterval starts a background sweep of expired cache entries.
// Disabled by default; Close stops it.
func WithCleanupInterval(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cleanupInterval = d
	})
}

// WithKeyPrefix namespaces Redis keys and indexes. Default: "docsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithBlobPath sets the bbolt file holding uploaded bytes.
// Default: "docsearch-blobs.db" in the working directory.
func WithBlobPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.blobPath = path
	})
}

// WithMaxUploadBytes bounds a single upload. Default: 10 MiB.
func WithMaxUploadBytes(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxUploadBytes = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
