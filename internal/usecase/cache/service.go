package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// DefaultTTL applies when the service is built with a non-positive TTL.
const DefaultTTL = time.Hour

const defaultQueryListLimit = 10

// Service is the result cache: TTL-bounded pages keyed by query.Key.
type Service struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	events  *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates a cache service.
func New(backend Backend, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.Named("cache"),
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics sets a counter vec with label "event" (hit, miss, write, write_error, evict).
func (s *Service) WithMetrics(events *prometheus.CounterVec) *Service {
	s.events = events
	return s
}

// TTL returns the default entry lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Get returns a live cached page. An expired entry is deleted as a side effect.
// Backend failures are reported as a miss.
func (s *Service) Get(ctx context.Context, key string) (result.Page, bool) {
	e, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		}
		s.inc("miss")
		return result.Page{}, false
	}

	now := s.now()
	if e.Expired(now) {
		if _, err := s.backend.DeleteIfExpired(ctx, key, now); err != nil {
			s.logger.Warn("Failed to drop expired cache entry", zap.String("key", key), zap.Error(err))
		} else {
			s.inc("evict")
		}
		s.inc("miss")
		return result.Page{}, false
	}

	s.inc("hit")
	return e.Page, true
}

// Set stores page under key, replacing any previous entry. ttl <= 0 uses the default.
// Reports whether the write succeeded.
func (s *Service) Set(ctx context.Context, key, queryText string, page result.Page, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	e := domcache.Entry{
		Key:       key,
		QueryText: queryText,
		Page:      page,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.backend.Put(ctx, &e); err != nil {
		s.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
		s.inc("write_error")
		return false
	}
	s.inc("write")
	return true
}

// CleanupExpired deletes every entry whose expiry has passed and returns how many were removed.
// Expiry is re-checked by the backend at deletion time, so a concurrent rewrite survives.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	metas, err := s.list(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range metas {
		if !metas[i].Expired(s.now()) {
			continue
		}
		ok, err := s.backend.DeleteIfExpired(ctx, metas[i].Key, s.now())
		if err != nil {
			return removed, fmt.Errorf("%w: delete %s: %w", domain.ErrCacheBackend, metas[i].Key, err)
		}
		if ok {
			removed++
		}
	}
	s.add("evict", removed)
	return removed, nil
}

// Clear deletes all entries.
func (s *Service) Clear(ctx context.Context) (int, error) {
	n, err := s.backend.Purge(ctx)
	if err != nil {
		return n, fmt.Errorf("%w: purge: %w", domain.ErrCacheBackend, err)
	}
	return n, nil
}

// InvalidateByPattern deletes entries whose query text contains pattern (case-insensitive).
func (s *Service) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	if strings.TrimSpace(pattern) == "" {
		return 0, fmt.Errorf("%w: pattern is required", domain.ErrInvalidParameter)
	}
	metas, err := s.list(ctx)
	if err != nil {
		return 0, err
	}

	needle := strings.ToLower(pattern)
	removed := 0
	for i := range metas {
		if !strings.Contains(strings.ToLower(metas[i].QueryText), needle) {
			continue
		}
		ok, err := s.backend.Delete(ctx, metas[i].Key)
		if err != nil {
			return removed, fmt.Errorf("%w: delete %s: %w", domain.ErrCacheBackend, metas[i].Key, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Warmup generates and stores pages for queries that have no live entry.
// A failing query is counted and reported without stopping the run.
func (s *Service) Warmup(ctx context.Context, queries []query.Query, generate Generator) domcache.WarmupReport {
	report := domcache.WarmupReport{Errors: []string{}}

	for _, q := range queries {
		if ctx.Err() != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", q.Text(), ctx.Err()))
			continue
		}
		key := q.Key()
		if e, err := s.backend.Get(ctx, key); err == nil && !e.Expired(s.now()) {
			continue
		}

		page, err := generate(ctx, q)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", q.Text(), err))
			continue
		}
		if !s.Set(ctx, key, q.Text(), page, 0) {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: cache write failed", q.Text()))
			continue
		}
		report.Warmed++
	}

	s.logger.Info("Cache warm-up finished",
		zap.Int("warmed", report.Warmed),
		zap.Int("failed", report.Failed),
	)
	return report
}

// Stats summarizes all stored entries, live and expired.
func (s *Service) Stats(ctx context.Context) (domcache.Stats, error) {
	metas, err := s.list(ctx)
	if err != nil {
		return domcache.Stats{}, err
	}

	now := s.now()
	st := domcache.Stats{TotalEntries: len(metas)}
	for i := range metas {
		m := &metas[i]
		if m.Expired(now) {
			st.ExpiredEntries++
		} else {
			st.ActiveEntries++
		}
		if st.OldestEntry == nil || m.CreatedAt.Before(*st.OldestEntry) {
			t := m.CreatedAt
			st.OldestEntry = &t
		}
		if st.NewestEntry == nil || m.CreatedAt.After(*st.NewestEntry) {
			t := m.CreatedAt
			st.NewestEntry = &t
		}
	}
	return st, nil
}

// PopularQueries counts live entries per query text created at or after since.
// Ordered by count descending, then text ascending.
func (s *Service) PopularQueries(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error) {
	metas, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultQueryListLimit
	}

	now := s.now()
	counts := make(map[string]int)
	for i := range metas {
		if metas[i].Expired(now) || metas[i].CreatedAt.Before(since) {
			continue
		}
		counts[metas[i].QueryText]++
	}

	out := make([]domcache.PopularQuery, 0, len(counts))
	for text, n := range counts {
		out = append(out, domcache.PopularQuery{QueryText: text, SearchCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SearchCount != out[j].SearchCount {
			return out[i].SearchCount > out[j].SearchCount
		}
		return out[i].QueryText < out[j].QueryText
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecentQueries lists distinct live query texts, newest first.
func (s *Service) RecentQueries(ctx context.Context, limit int) ([]domcache.RecentQuery, error) {
	metas, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultQueryListLimit
	}

	now := s.now()
	latest := make(map[string]time.Time)
	for i := range metas {
		if metas[i].Expired(now) {
			continue
		}
		if t, ok := latest[metas[i].QueryText]; !ok || metas[i].CreatedAt.After(t) {
			latest[metas[i].QueryText] = metas[i].CreatedAt
		}
	}

	out := make([]domcache.RecentQuery, 0, len(latest))
	for text, t := range latest {
		out = append(out, domcache.RecentQuery{QueryText: text, CreatedAt: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].QueryText < out[j].QueryText
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) list(ctx context.Context) ([]domcache.Meta, error) {
	metas, err := s.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", domain.ErrCacheBackend, err)
	}
	return metas, nil
}

func (s *Service) inc(event string) { s.add(event, 1) }

func (s *Service) add(event string, n int) {
	if s.events != nil && n > 0 {
		s.events.WithLabelValues(event).Add(float64(n))
	}
}
