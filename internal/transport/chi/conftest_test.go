package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// --- mockSearch ---

type mockSearch struct {
	searchFn  func(ctx context.Context, q query.Query) (result.Response, error)
	suggestFn func(ctx context.Context, prefix string, limit int) ([]string, error)
	warmupFn  func(ctx context.Context, queries []query.Query) domcache.WarmupReport
}

func (m *mockSearch) Search(ctx context.Context, q query.Query) (result.Response, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return result.Response{Page: result.NewPage(nil, q.Page(), q.Limit(), 0)}, nil
}

func (m *mockSearch) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, prefix, limit)
	}
	return []string{}, nil
}

func (m *mockSearch) Warmup(ctx context.Context, queries []query.Query) domcache.WarmupReport {
	if m.warmupFn != nil {
		return m.warmupFn(ctx, queries)
	}
	return domcache.WarmupReport{Warmed: len(queries)}
}

// --- mockCache ---

type mockCache struct {
	statsFn      func(ctx context.Context) (domcache.Stats, error)
	popularFn    func(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error)
	recentFn     func(ctx context.Context, limit int) ([]domcache.RecentQuery, error)
	clearFn      func(ctx context.Context) (int, error)
	invalidateFn func(ctx context.Context, pattern string) (int, error)
	cleanupFn    func(ctx context.Context) (int, error)
}

func (m *mockCache) Stats(ctx context.Context) (domcache.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return domcache.Stats{}, nil
}

func (m *mockCache) PopularQueries(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error) {
	if m.popularFn != nil {
		return m.popularFn(ctx, limit, since)
	}
	return nil, nil
}

func (m *mockCache) RecentQueries(ctx context.Context, limit int) ([]domcache.RecentQuery, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockCache) Clear(ctx context.Context) (int, error) {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	return 0, nil
}

func (m *mockCache) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, pattern)
	}
	return 0, nil
}

func (m *mockCache) CleanupExpired(ctx context.Context) (int, error) {
	if m.cleanupFn != nil {
		return m.cleanupFn(ctx)
	}
	return 0, nil
}

// --- mockDocuments ---

type mockDocuments struct {
	maxBytes   int64
	uploadFn   func(ctx context.Context, in documentuc.Upload) (domdoc.Document, error)
	getFn      func(ctx context.Context, id string) (domdoc.Document, error)
	listFn     func(ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction) (documentuc.Listing, error)
	deleteFn   func(ctx context.Context, id string) error
	downloadFn func(ctx context.Context, id string) (domdoc.Document, []byte, error)
}

func (m *mockDocuments) Upload(ctx context.Context, in documentuc.Upload) (domdoc.Document, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, in)
	}
	return testDocument("doc-1", in.Filename), nil
}

func (m *mockDocuments) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return testDocument(id, "report.txt"), nil
}

func (m *mockDocuments) List(
	ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction,
) (documentuc.Listing, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, limit, by, dir)
	}
	return documentuc.Listing{Pagination: result.NewPagination(page, limit, 0)}, nil
}

func (m *mockDocuments) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockDocuments) Download(ctx context.Context, id string) (domdoc.Document, []byte, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, id)
	}
	return testDocument(id, "report.txt"), []byte("hello"), nil
}

func (m *mockDocuments) MaxUploadBytes() int64 {
	if m.maxBytes > 0 {
		return m.maxBytes
	}
	return documentuc.DefaultMaxUploadBytes
}

// --- mockHealth ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

type testDeps struct {
	search    *mockSearch
	cache     *mockCache
	documents *mockDocuments
	health    *mockHealth
}

func newTestDeps() *testDeps {
	return &testDeps{
		search:    &mockSearch{},
		cache:     &mockCache{},
		documents: &mockDocuments{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
}

func (d *testDeps) router() http.Handler {
	logger := zap.NewNop()
	s := NewServer(d.search, d.cache, d.documents, d.health, logger).
		WithClock(func() time.Time { return fixedNow }).
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}))

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	s.Register(r)
	return r
}

func testDocument(id, filename string) domdoc.Document {
	return domdoc.Reconstruct(id, domdoc.TitleFromFilename(filename), filename, "some text",
		1536, "text/plain", "blob-"+id, fixedNow, fixedNow)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = http.NoBody
	}
	req := httptest.NewRequest(method, target, body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// testEnvelope decodes data lazily so each test can pick its own shape.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env testEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
