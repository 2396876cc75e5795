package cache

import (
	"context"
	"time"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Backend stores cache entries. Get returns domain.ErrCacheMiss for an absent key.
type Backend interface {
	Get(ctx context.Context, key string) (domcache.Entry, error)
	Put(ctx context.Context, e *domcache.Entry) error
	Delete(ctx context.Context, key string) (bool, error)
	// DeleteIfExpired deletes key only if its stored expiry is <= now at deletion time.
	DeleteIfExpired(ctx context.Context, key string, now time.Time) (bool, error)
	List(ctx context.Context) ([]domcache.Meta, error)
	Purge(ctx context.Context) (int, error)
}

// Generator produces a result page for a query on the uncached path.
type Generator func(ctx context.Context, q query.Query) (result.Page, error)
