package docsearch

import (
	"context"
	"time"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn  func(ctx context.Context, q query.Query) (result.Response, error)
	suggestFn func(ctx context.Context, prefix string, limit int) ([]string, error)
	warmupFn  func(ctx context.Context, queries []query.Query) domcache.WarmupReport
}

func (m *mockSearchUC) Search(ctx context.Context, q query.Query) (result.Response, error) {
	return m.searchFn(ctx, q)
}

func (m *mockSearchUC) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	return m.suggestFn(ctx, prefix, limit)
}

func (m *mockSearchUC) Warmup(ctx context.Context, queries []query.Query) domcache.WarmupReport {
	return m.warmupFn(ctx, queries)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	uploadFn   func(ctx context.Context, in documentuc.Upload) (domdoc.Document, error)
	getFn      func(ctx context.Context, id string) (domdoc.Document, error)
	listFn     func(ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction) (documentuc.Listing, error)
	deleteFn   func(ctx context.Context, id string) error
	downloadFn func(ctx context.Context, id string) (domdoc.Document, []byte, error)
}

func (m *mockDocumentUC) Upload(ctx context.Context, in documentuc.Upload) (domdoc.Document, error) {
	return m.uploadFn(ctx, in)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domdoc.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) List(
	ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction,
) (documentuc.Listing, error) {
	return m.listFn(ctx, page, limit, by, dir)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) Download(ctx context.Context, id string) (domdoc.Document, []byte, error) {
	return m.downloadFn(ctx, id)
}

// --- cacheUseCase mock ---

type mockCacheUC struct {
	statsFn      func(ctx context.Context) (domcache.Stats, error)
	popularFn    func(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error)
	recentFn     func(ctx context.Context, limit int) ([]domcache.RecentQuery, error)
	clearFn      func(ctx context.Context) (int, error)
	invalidateFn func(ctx context.Context, pattern string) (int, error)
	cleanupFn    func(ctx context.Context) (int, error)
}

func (m *mockCacheUC) Stats(ctx context.Context) (domcache.Stats, error) {
	return m.statsFn(ctx)
}

func (m *mockCacheUC) PopularQueries(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error) {
	return m.popularFn(ctx, limit, since)
}

func (m *mockCacheUC) RecentQueries(ctx context.Context, limit int) ([]domcache.RecentQuery, error) {
	return m.recentFn(ctx, limit)
}

func (m *mockCacheUC) Clear(ctx context.Context) (int, error) {
	return m.clearFn(ctx)
}

func (m *mockCacheUC) InvalidateByPattern(ctx context.Context, pattern string) (int, error) {
	return m.invalidateFn(ctx, pattern)
}

func (m *mockCacheUC) CleanupExpired(ctx context.Context) (int, error) {
	return m.cleanupFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

var testTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testDoc(id, filename string) domdoc.Document {
	return domdoc.Reconstruct(id, domdoc.TitleFromFilename(filename), filename, "quarterly revenue grew",
		2048, "text/plain", "blob-"+id, testTime, testTime)
}
