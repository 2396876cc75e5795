package docsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// SearchBuilder is a fluent builder for a full-text search.
type SearchBuilder struct {
	svc searchUseCase
	obs *observer

	text   string
	page   int
	limit  int
	sortBy SortField
	order  SortOrder
	mode   Mode
}

// Search starts a search for text. Defaults: natural mode, relevance
// descending, page 1, 10 hits.
func (c *Client) Search(text string) *SearchBuilder {
	return &SearchBuilder{
		svc:   c.searchSvc,
		obs:   c.obs,
		text:  text,
		page:  1,
		limit: query.DefaultLimit,
	}
}

// Mode sets how the text is interpreted.
func (b *SearchBuilder) Mode(m Mode) *SearchBuilder {
	b.mode = m
	return b
}

// SortBy sets the sort field and direction.
func (b *SearchBuilder) SortBy(f SortField, o SortOrder) *SearchBuilder {
	b.sortBy = f
	b.order = o
	return b
}

// Page sets the 1-based page number.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.page = n
	return b
}

// Limit sets the page size, clamped to [1, 100].
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Do runs the search. Repeated identical searches are served from the cache
// until the TTL elapses or the corpus changes.
func (b *SearchBuilder) Do(ctx context.Context) (_ Response, err error) {
	start := time.Now()
	defer func() { b.obs.observe("search", start, err) }()

	q, err := query.New(b.text, b.page, b.limit, b.sortBy, b.order, b.mode)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	resp, err := b.svc.Search(ctx, q)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}
	return resp, nil
}

// Suggest returns up to limit distinct document titles matching prefix.
func (c *Client) Suggest(ctx context.Context, prefix string, limit int) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	titles, err := c.searchSvc.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return titles, nil
}
