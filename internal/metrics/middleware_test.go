package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("doc"))
	})

	serve(r, "GET", "/api/documents/abc")
	serve(r, "GET", "/api/documents/def")

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/documents/{id}", "200"))
	if got < 2 {
		t.Errorf("requests_total for route pattern = %v, want >= 2", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected http_response_size_bytes observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/upload", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.WriteHeader(http.StatusOK) // ignored by the recorder
	})

	tests := []struct {
		method, path, status string
	}{
		{"GET", "/ok", "200"},
		{"GET", "/missing", "404"},
		{"POST", "/upload", "413"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			serve(r, tc.method, tc.path)
			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status)); v < 1 {
				t.Errorf("requests_total{%s %s %s} = %v, want >= 1", tc.method, tc.path, tc.status, v)
			}
		})
	}
}

func TestMiddleware_SkipsScrapePath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get(ScrapePath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", ScrapePath, "200"))
	rr := serve(r, "GET", ScrapePath)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", ScrapePath, "200"))
	if after != before {
		t.Errorf("scrape was counted: before %v, after %v", before, after)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	var during float64
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight)
		w.WriteHeader(http.StatusNoContent)
	})

	serve(r, "GET", "/slow")

	if during < 1 {
		t.Errorf("in-flight during request = %v, want >= 1", during)
	}
	if v := testutil.ToFloat64(httpRequestsInFlight); v != 0 {
		t.Errorf("in-flight after request = %v, want 0", v)
	}
}

func TestRouteLabel_Unmatched(t *testing.T) {
	req := httptest.NewRequest("GET", "/nowhere", http.NoBody)
	if got := routeLabel(req); got != "unmatched" {
		t.Errorf("routeLabel without chi context = %q, want unmatched", got)
	}
}
