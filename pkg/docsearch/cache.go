package docsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// CacheService inspects and maintains the result cache.
type CacheService struct {
	svc    cacheUseCase
	search searchUseCase
	obs    *observer
}

// Stats summarizes cache contents.
func (s *CacheService) Stats(ctx context.Context) (_ CacheStats, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_stats", start, err) }()

	st, err := s.svc.Stats(ctx)
	if err != nil {
		return CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}

// Popular ranks query texts by live cached pages created after since.
func (s *CacheService) Popular(ctx context.Context, limit int, since time.Time) (_ []PopularQuery, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_popular", start, err) }()

	pq, err := s.svc.PopularQueries(ctx, limit, since)
	if err != nil {
		return nil, fmt.Errorf("popular queries: %w", err)
	}
	return pq, nil
}

// Recent lists the most recently cached query texts.
func (s *CacheService) Recent(ctx context.Context, limit int) (_ []RecentQuery, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_recent", start, err) }()

	rq, err := s.svc.RecentQueries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent queries: %w", err)
	}
	return rq, nil
}

// Clear drops every cached page. An empty pattern clears everything,
// otherwise only pages whose query text contains pattern are dropped.
func (s *CacheService) Clear(ctx context.Context, pattern string) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_clear", start, err) }()

	var n int
	if pattern == "" {
		n, err = s.svc.Clear(ctx)
	} else {
		n, err = s.svc.InvalidateByPattern(ctx, pattern)
	}
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

// Cleanup removes expired entries now instead of waiting for the sweeper.
func (s *CacheService) Cleanup(ctx context.Context) (_ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_cleanup", start, err) }()

	n, err := s.svc.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup cache: %w", err)
	}
	return n, nil
}

// Warmup caches the first natural-mode page of each text that is not cached yet.
func (s *CacheService) Warmup(ctx context.Context, texts ...string) (_ WarmupReport, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cache_warmup", start, err) }()

	queries := make([]query.Query, 0, len(texts))
	for _, text := range texts {
		q, err := query.New(text, 1, query.DefaultLimit, ordering.Relevance, ordering.Desc, mode.Natural)
		if err != nil {
			return WarmupReport{}, fmt.Errorf("warmup %q: %w", text, err)
		}
		queries = append(queries, q)
	}
	return s.search.Warmup(ctx, queries), nil
}
