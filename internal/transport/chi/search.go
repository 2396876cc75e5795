package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/logger"
)

// Statistics sizes for GET /api/search/stats.
const (
	statsPopularLimit = 5
	statsPopularDays  = 7
	statsRecentLimit  = 10
)

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	q, err := params.toQuery()
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("search",
		zap.String("query", q.Text()),
		zap.String("mode", string(q.Mode())),
		zap.Int("results", len(resp.Data)),
		zap.Int("total", resp.Pagination.Total),
		zap.Bool("cached", resp.Metadata.Cached),
	)
	writeData(w, http.StatusOK, resp)
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions handles GET /api/search/suggestions. Short prefixes yield an empty list.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	var (
		prefix string
		limit  *int
	)
	if err := bindQuery(r, optional("q", &prefix), optional("limit", &limit)); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < MinQueryLength {
		writeData(w, http.StatusOK, suggestionsResponse{Suggestions: []string{}})
		return
	}

	titles, err := s.search.Suggest(r.Context(), prefix, derefOr(limit, 0))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, suggestionsResponse{Suggestions: titles})
}

type popularResponse struct {
	PopularQueries []domcache.PopularQuery `json:"popular_queries"`
}

// PopularQueries handles GET /api/search/popular.
func (s *Server) PopularQueries(w http.ResponseWriter, r *http.Request) {
	var limit, days *int
	if err := bindQuery(r, optional("limit", &limit), optional("days", &days)); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	n := clamp(derefOr(limit, DefaultPopularSize), 1, MaxPopularSize)
	d := clamp(derefOr(days, DefaultPopularDays), 1, MaxPopularDays)

	popular, err := s.cache.PopularQueries(r.Context(), n, s.since(d))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, popularResponse{PopularQueries: nonNil(popular)})
}

type statsResponse struct {
	Cache          domcache.Stats          `json:"cache"`
	PopularQueries []domcache.PopularQuery `json:"popular_queries"`
	RecentQueries  []domcache.RecentQuery  `json:"recent_queries"`
}

// CacheStats handles GET /api/search/stats.
func (s *Server) CacheStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.cache.Stats(ctx)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	popular, err := s.cache.PopularQueries(ctx, statsPopularLimit, s.since(statsPopularDays))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	recent, err := s.cache.RecentQueries(ctx, statsRecentLimit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, statsResponse{
		Cache:          stats,
		PopularQueries: nonNil(popular),
		RecentQueries:  nonNil(recent),
	})
}

type removedResponse struct {
	Removed int `json:"removed"`
}

// ClearCache handles DELETE /api/search/cache. With ?pattern= only matching query texts are dropped.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	var pattern string
	if err := bindQuery(r, optional("pattern", &pattern)); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	var (
		n   int
		err error
	)
	if pattern = strings.TrimSpace(pattern); pattern == "" {
		n, err = s.cache.Clear(r.Context())
	} else {
		n, err = s.cache.InvalidateByPattern(r.Context(), pattern)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("search cache cleared",
		zap.String("pattern", pattern), zap.Int("removed", n))
	writeData(w, http.StatusOK, removedResponse{Removed: n})
}

// CleanupCache handles POST /api/search/cache/cleanup.
func (s *Server) CleanupCache(w http.ResponseWriter, r *http.Request) {
	n, err := s.cache.CleanupExpired(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, removedResponse{Removed: n})
}

type warmupRequest struct {
	Queries []searchParams `json:"queries"`
}

// WarmupCache handles POST /api/search/cache/warmup. Queries already cached are skipped.
func (s *Server) WarmupCache(w http.ResponseWriter, r *http.Request) {
	var req warmupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Queries) == 0 || len(req.Queries) > MaxWarmupQueries {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("queries must contain between 1 and %d items", MaxWarmupQueries))
		return
	}

	queries := make([]query.Query, 0, len(req.Queries))
	for i, p := range req.Queries {
		q, err := p.toQuery()
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("queries[%d]: %v", i, err))
			return
		}
		queries = append(queries, q)
	}

	report := s.search.Warmup(r.Context(), queries)
	if report.Errors == nil {
		report.Errors = []string{}
	}
	logger.FromContext(r.Context()).Info("search cache warmed",
		zap.Int("warmed", report.Warmed), zap.Int("failed", report.Failed))
	writeData(w, http.StatusOK, report)
}

func (s *Server) since(days int) time.Time {
	return s.now().Add(-time.Duration(days) * 24 * time.Hour)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
