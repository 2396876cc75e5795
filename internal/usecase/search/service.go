package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 5
	MaxSuggestLimit     = 10
)

const tracerName = "github.com/kailas-cloud/docsearch/internal/usecase/search"

// Service is the search orchestrator: cache lookup, then build, rank, enhance and store on a miss.
type Service struct {
	engine   Engine
	titles   TitleSuggester
	cache    Cache
	enhancer *Enhancer
	ttl      time.Duration
	duration *prometheus.HistogramVec
	tracer   trace.Tracer
	since    func(time.Time) time.Duration
	logger   *zap.Logger
}

// New creates a search service. A zero TTL defers to the cache default.
func New(engine Engine, texts TextSource, titles TitleSuggester, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		engine:   engine,
		titles:   titles,
		cache:    cache,
		enhancer: NewEnhancer(texts, logger),
		tracer:   otel.Tracer(tracerName),
		since:    time.Since,
		logger:   logger.Named("search"),
	}
}

// WithTTL sets the lifetime of cached pages.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	s.ttl = ttl
	return s
}

// WithSnippet sets the snippet window length and step, in characters.
func (s *Service) WithSnippet(length, step int) *Service {
	s.enhancer.WithWindow(length, step)
	return s
}

// WithMetrics sets a histogram with labels "mode" and "outcome" (hit, miss, error).
func (s *Service) WithMetrics(duration *prometheus.HistogramVec) *Service {
	s.duration = duration
	return s
}

// WithTracer replaces the global tracer.
func (s *Service) WithTracer(t trace.Tracer) *Service {
	s.tracer = t
	return s
}

// Search returns one page of enhanced results for q, from the cache when a live entry exists.
// Engine failures abort the call and nothing is cached.
func (s *Service) Search(ctx context.Context, q query.Query) (result.Response, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("search.mode", string(q.Mode())),
		attribute.String("search.sort_by", string(q.SortBy())),
		attribute.Int("search.page", q.Page()),
		attribute.Int("search.limit", q.Limit()),
	))
	defer span.End()

	key := q.Key()
	page, cached := s.cache.Get(ctx, key)
	span.SetAttributes(attribute.Bool("search.cache_hit", cached))

	if !cached {
		var err error
		page, err = s.generate(ctx, q)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			s.observe(q, "error", start)
			return result.Response{}, err
		}
		if !s.cache.Set(ctx, key, q.Text(), page, s.ttl) {
			s.logger.Debug("Search page not cached", zap.String("key", key))
		}
	}

	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	s.observe(q, outcome, start)
	span.SetAttributes(attribute.Int("search.total", page.Pagination.Total))

	logger.FromContext(ctx).Debug("Search served",
		zap.String("key", key),
		zap.Bool("cached", cached),
		zap.Int("total", page.Pagination.Total),
	)

	return result.Response{
		Page: page,
		Metadata: result.Metadata{
			Query:           q.Text(),
			ExecutionTimeMS: elapsedMillis(s.since(start)),
			Page:            q.Page(),
			Limit:           q.Limit(),
			SortBy:          string(q.SortBy()),
			SortOrder:       string(q.SortOrder()),
			SearchMode:      string(q.Mode()),
			Cached:          cached,
		},
	}, nil
}

// Suggest returns up to limit distinct document titles matching prefix, title ascending.
// limit is clamped to [1, MaxSuggestLimit]; zero selects DefaultSuggestLimit.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	switch {
	case limit == 0:
		limit = DefaultSuggestLimit
	case limit < 1:
		limit = 1
	case limit > MaxSuggestLimit:
		limit = MaxSuggestLimit
	}

	titles, err := s.titles.SuggestTitles(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest titles: %w", err)
	}
	return titles, nil
}

// Warmup precomputes and caches the pages of queries that have no live entry.
func (s *Service) Warmup(ctx context.Context, queries []query.Query) domcache.WarmupReport {
	return s.cache.Warmup(ctx, queries, s.generate)
}

// generate is the miss path: build, rank, enhance, paginate.
func (s *Service) generate(ctx context.Context, q query.Query) (result.Page, error) {
	eq := Build(q.Text(), q.Mode())

	ranked, err := s.rank(ctx, eq, q)
	if err != nil {
		return result.Page{}, err
	}

	ctx, span := s.tracer.Start(ctx, "search.enhance", trace.WithAttributes(
		attribute.Int("search.rows", len(ranked.Rows)),
	))
	data, err := s.enhancer.Enhance(ctx, ranked.Rows, Terms(q.Text(), q.Mode()))
	span.End()
	if err != nil {
		return result.Page{}, err
	}

	return result.NewPage(data, q.Page(), q.Limit(), ranked.Total), nil
}

func (s *Service) rank(ctx context.Context, eq query.EngineQuery, q query.Query) (result.Ranked, error) {
	ctx, span := s.tracer.Start(ctx, "search.engine", trace.WithAttributes(
		attribute.String("engine.operator", string(eq.Operator)),
	))
	defer span.End()

	ranked, err := s.engine.SearchRanked(ctx, eq, q.Page(), q.Limit(), q.SortBy(), q.SortOrder())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "engine query failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result.Ranked{}, fmt.Errorf("search ranked: %w", err)
		}
		return result.Ranked{}, fmt.Errorf("%w: %w", domain.ErrEngine, err)
	}
	return ranked, nil
}

func (s *Service) observe(q query.Query, outcome string, start time.Time) {
	if s.duration != nil {
		s.duration.WithLabelValues(string(q.Mode()), outcome).Observe(time.Since(start).Seconds())
	}
}

// elapsedMillis converts d to milliseconds rounded to 2 decimals.
func elapsedMillis(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}
