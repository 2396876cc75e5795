package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	"github.com/kailas-cloud/docsearch/internal/version"
)

// Server serves the docsearch HTTP API.
type Server struct {
	search        SearchService
	cache         CacheAdmin
	documents     DocumentService
	health        HealthChecker
	metrics       http.Handler
	now           func() time.Time
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService,
	cache CacheAdmin,
	documents DocumentService,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		cache:         cache,
		documents:     documents,
		health:        health,
		metrics:       promhttp.Handler(),
		now:           time.Now,
		logger:        logger.Named("http"),
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithClock overrides the time source used for popular-query windows.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// WithMetricsHandler replaces the default Prometheus handler.
func (s *Server) WithMetricsHandler(h http.Handler) *Server {
	if h != nil {
		s.metrics = h
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.HealthCheck)

		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.Search)
			r.Get("/suggestions", s.Suggestions)
			r.Get("/popular", s.PopularQueries)
			r.Get("/stats", s.CacheStats)
			r.Delete("/cache", s.ClearCache)
			r.Post("/cache/cleanup", s.CleanupCache)
			r.Post("/cache/warmup", s.WarmupCache)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.UploadDocument)
			r.Get("/", s.ListDocuments)
			r.Get("/{id}", s.GetDocument)
			r.Get("/{id}/download", s.DownloadDocument)
			r.Delete("/{id}", s.DeleteDocument)
		})
	})

	r.Get("/metrics", s.Metrics)
}

// healthResponse is the body of GET /api/health.
type healthResponse struct {
	Status    healthuc.Status                 `json:"status"`
	Checks    map[string]healthuc.CheckResult `json:"checks"`
	Version   string                          `json:"version"`
	Timestamp time.Time                       `json:"timestamp"`
}

// HealthCheck handles GET /api/health. Degraded still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, Envelope{
		Success: report.Status != healthuc.Unhealthy,
		Data: healthResponse{
			Status:    report.Status,
			Checks:    report.Checks,
			Version:   version.Version,
			Timestamp: s.now().UTC(),
		},
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}
