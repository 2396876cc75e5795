package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// Search parameter limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
	// KeyPrefix starts every result cache key.
	KeyPrefix = "search_"
)

// Query is a validated search request.
type Query struct {
	text      string
	page      int
	limit     int
	sortBy    ordering.Field
	sortOrder ordering.Direction
	mode      mode.Mode
}

// New validates enums and clamps page (>= 1) and limit ([1, MaxLimit]).
// Empty enums take their defaults: relevance, DESC, natural.
func New(
	text string,
	page, limit int,
	sortBy ordering.Field,
	sortOrder ordering.Direction,
	m mode.Mode,
) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidParameter)
	}
	if sortBy == "" {
		sortBy = ordering.Relevance
	}
	if !sortBy.IsValid() {
		return Query{}, fmt.Errorf("%w: sort field %q", domain.ErrInvalidParameter, sortBy)
	}
	if sortOrder == "" {
		sortOrder = ordering.Desc
	}
	if !sortOrder.IsValid() {
		return Query{}, fmt.Errorf("%w: sort order %q", domain.ErrInvalidParameter, sortOrder)
	}
	if m == "" {
		m = mode.Natural
	}
	if !m.IsValid() {
		return Query{}, fmt.Errorf("%w: search mode %q", domain.ErrInvalidParameter, m)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Query{
		text:      text,
		page:      page,
		limit:     limit,
		sortBy:    sortBy,
		sortOrder: sortOrder,
		mode:      m,
	}, nil
}

// Text returns the raw query text.
func (q Query) Text() string { return q.text }

// Page returns the 1-based page number.
func (q Query) Page() int { return q.page }

// Limit returns the page size.
func (q Query) Limit() int { return q.limit }

// SortBy returns the sort field.
func (q Query) SortBy() ordering.Field { return q.sortBy }

// SortOrder returns the sort direction.
func (q Query) SortOrder() ordering.Direction { return q.sortOrder }

// Mode returns the query interpretation mode.
func (q Query) Mode() mode.Mode { return q.mode }

// Offset returns the zero-based index of the first row on the page.
func (q Query) Offset() int { return (q.page - 1) * q.limit }

// keyTuple fixes field order for hashing.
type keyTuple struct {
	Text      string `json:"text"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
	Mode      string `json:"mode"`
}

// Key derives the result cache key from all six parameters.
func (q Query) Key() string {
	b, _ := json.Marshal(keyTuple{
		Text:      q.text,
		Page:      q.page,
		Limit:     q.limit,
		SortBy:    string(q.sortBy),
		SortOrder: string(q.sortOrder),
		Mode:      string(q.mode),
	})
	sum := sha256.Sum256(b)
	return KeyPrefix + hex.EncodeToString(sum[:])
}
