package db

import (
	"context"
	"time"
)

// Store is everything the Redis backend offers. Repositories depend on the
// narrow interfaces below instead.
//
//nolint:interfacebloat // consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger is satisfied by any backend that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore covers the hash commands used for documents and cache entries.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelIfFieldAtMost(ctx context.Context, key, field string, limit int64) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// IndexManager creates and inspects the document text index.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs full-text queries against an index.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
