package chi

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

// SearchService runs searches and title suggestions.
type SearchService interface {
	Search(ctx context.Context, q query.Query) (result.Response, error)
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Warmup(ctx context.Context, queries []query.Query) domcache.WarmupReport
}

// CacheAdmin exposes result cache maintenance and statistics.
type CacheAdmin interface {
	Stats(ctx context.Context) (domcache.Stats, error)
	PopularQueries(ctx context.Context, limit int, since time.Time) ([]domcache.PopularQuery, error)
	RecentQueries(ctx context.Context, limit int) ([]domcache.RecentQuery, error)
	Clear(ctx context.Context) (int, error)
	InvalidateByPattern(ctx context.Context, pattern string) (int, error)
	CleanupExpired(ctx context.Context) (int, error)
}

// DocumentService manages the document corpus.
type DocumentService interface {
	Upload(ctx context.Context, in documentuc.Upload) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction) (documentuc.Listing, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (domdoc.Document, []byte, error)
	MaxUploadBytes() int64
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
