package memcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
)

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 10000

// Repo is a bounded in-process cache backend. Implements usecase/cache.Backend.
// Least recently used entries are dropped when the bound is reached.
type Repo struct {
	// mu serializes compound operations (check-then-delete); the LRU has its own lock.
	mu    sync.Mutex
	cache *lru.Cache[string, domcache.Entry]
}

// New creates an in-memory backend holding at most maxEntries entries.
func New(maxEntries int) (*Repo, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c, err := lru.New[string, domcache.Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Repo{cache: c}, nil
}

// Get returns a stored entry or domain.ErrCacheMiss.
func (r *Repo) Get(_ context.Context, key string) (domcache.Entry, error) {
	e, ok := r.cache.Get(key)
	if !ok {
		return domcache.Entry{}, domain.ErrCacheMiss
	}
	return e, nil
}

// Put stores an entry, replacing any previous one.
func (r *Repo) Put(_ context.Context, e *domcache.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(e.Key, *e)
	return nil
}

// Delete removes an entry. Reports whether it existed.
func (r *Repo) Delete(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Remove(key), nil
}

// DeleteIfExpired removes the entry only if it is expired at now.
func (r *Repo) DeleteIfExpired(_ context.Context, key string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.cache.Peek(key)
	if !ok || !e.Expired(now) {
		return false, nil
	}
	return r.cache.Remove(key), nil
}

// List returns metadata of every entry without touching recency.
func (r *Repo) List(_ context.Context) ([]domcache.Meta, error) {
	keys := r.cache.Keys()
	out := make([]domcache.Meta, 0, len(keys))
	for _, k := range keys {
		e, ok := r.cache.Peek(k)
		if !ok {
			continue
		}
		out = append(out, domcache.Meta{
			Key:       e.Key,
			QueryText: e.QueryText,
			CreatedAt: e.CreatedAt,
			ExpiresAt: e.ExpiresAt,
		})
	}
	return out, nil
}

// Purge drops every entry and returns how many were removed.
func (r *Repo) Purge(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.cache.Len()
	r.cache.Purge()
	return n, nil
}
