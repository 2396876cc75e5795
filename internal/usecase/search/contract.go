package search

import (
	"context"
	"time"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	ucache "github.com/kailas-cloud/docsearch/internal/usecase/cache"
)

// Engine runs a ranked full-text query and returns one page of rows plus the total match count.
type Engine interface {
	SearchRanked(
		ctx context.Context, eq query.EngineQuery, page, limit int,
		by ordering.Field, dir ordering.Direction,
	) (result.Ranked, error)
}

// TextSource returns the extracted text of a document.
type TextSource interface {
	FullText(ctx context.Context, id string) (string, error)
}

// TitleSuggester lists document titles matching a prefix.
type TitleSuggester interface {
	SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error)
}

// Cache stores result pages by query key.
type Cache interface {
	Get(ctx context.Context, key string) (result.Page, bool)
	Set(ctx context.Context, key, queryText string, page result.Page, ttl time.Duration) bool
	Warmup(ctx context.Context, queries []query.Query, generate ucache.Generator) domcache.WarmupReport
}
