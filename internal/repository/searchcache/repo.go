package searchcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Hash fields of a cache entry.
const (
	fieldQueryText = "query_text"
	fieldResults   = "results"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// store is the consumer interface for the result cache (ISP).
type store interface {
	HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelIfFieldAtMost(ctx context.Context, key, field string, limit int64) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo keeps cache entries as Redis hashes. Implements usecase/cache.Backend.
type Repo struct {
	store  store
	prefix string
	grace  time.Duration
}

// New creates a Redis cache backend. Keys live under keyPrefix + "cache:".
// grace extends the native key expiry past expires_at so lazy and swept
// deletion stay the primary paths.
func New(s store, keyPrefix string, grace time.Duration) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "cache:", grace: grace}
}

// Get loads an entry. A missing key yields domain.ErrCacheMiss.
func (r *Repo) Get(ctx context.Context, key string) (domcache.Entry, error) {
	m, err := r.store.HGetAll(ctx, r.redisKey(key))
	if err != nil {
		return domcache.Entry{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domcache.Entry{}, domain.ErrCacheMiss
	}

	meta, err := parseMeta(key, m)
	if err != nil {
		return domcache.Entry{}, err
	}
	var page result.Page
	if err := json.Unmarshal([]byte(m[fieldResults]), &page); err != nil {
		return domcache.Entry{}, fmt.Errorf("decode cached page %s: %w", key, err)
	}

	return domcache.Entry{
		Key:       key,
		QueryText: meta.QueryText,
		Page:      page,
		CreatedAt: meta.CreatedAt,
		ExpiresAt: meta.ExpiresAt,
	}, nil
}

// Put writes an entry, replacing any previous one.
func (r *Repo) Put(ctx context.Context, e *domcache.Entry) error {
	data, err := json.Marshal(e.Page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}

	fields := map[string]string{
		fieldQueryText: e.QueryText,
		fieldResults:   string(data),
		fieldCreatedAt: strconv.FormatInt(e.CreatedAt.UnixMilli(), 10),
		fieldExpiresAt: strconv.FormatInt(e.ExpiresAt.UnixMilli(), 10),
	}
	ttl := e.ExpiresAt.Sub(e.CreatedAt) + r.grace
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	if err := r.store.HSetWithTTL(ctx, r.redisKey(e.Key), fields, ttl); err != nil {
		return fmt.Errorf("hset %s: %w", e.Key, err)
	}
	return nil
}

// Delete removes an entry. Reports whether it existed.
func (r *Repo) Delete(ctx context.Context, key string) (bool, error) {
	rk := r.redisKey(key)
	exists, err := r.store.Exists(ctx, rk)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	if !exists {
		return false, nil
	}
	if err := r.store.Del(ctx, rk); err != nil {
		return false, fmt.Errorf("del %s: %w", key, err)
	}
	return true, nil
}

// DeleteIfExpired removes the entry only if its stored expires_at is <= now.
// The check and delete run atomically on the server.
func (r *Repo) DeleteIfExpired(ctx context.Context, key string, now time.Time) (bool, error) {
	ok, err := r.store.DelIfFieldAtMost(ctx, r.redisKey(key), fieldExpiresAt, now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("delete expired %s: %w", key, err)
	}
	return ok, nil
}

// List returns metadata of every entry. Keys that vanish mid-scan are skipped.
func (r *Repo) List(ctx context.Context) ([]domcache.Meta, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HMGetMulti(ctx, keys, fieldQueryText, fieldCreatedAt, fieldExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("load cache metadata: %w", err)
	}

	out := make([]domcache.Meta, 0, len(rows))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		meta, err := parseMeta(strings.TrimPrefix(keys[i], r.prefix), m)
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// Purge deletes every entry and returns how many keys were removed.
func (r *Repo) Purge(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cache keys: %w", err)
	}
	for i, k := range keys {
		if err := r.store.Del(ctx, k); err != nil {
			return i, fmt.Errorf("del %s: %w", k, err)
		}
	}
	return len(keys), nil
}

func (r *Repo) redisKey(key string) string { return r.prefix + key }

func parseMeta(key string, m map[string]string) (domcache.Meta, error) {
	created, err := strconv.ParseInt(m[fieldCreatedAt], 10, 64)
	if err != nil {
		return domcache.Meta{}, fmt.Errorf("parse created_at of %s: %w", key, err)
	}
	expires, err := strconv.ParseInt(m[fieldExpiresAt], 10, 64)
	if err != nil {
		return domcache.Meta{}, fmt.Errorf("parse expires_at of %s: %w", key, err)
	}
	return domcache.Meta{
		Key:       key,
		QueryText: m[fieldQueryText],
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}, nil
}
