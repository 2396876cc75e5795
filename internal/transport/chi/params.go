package chi

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Query-string limits.
const (
	MinQueryLength     = 2
	DefaultPage        = 1
	DefaultPopularSize = 10
	MaxPopularSize     = 20
	DefaultPopularDays = 30
	MaxPopularDays     = 365
	MaxWarmupQueries   = 50
)

// queryParam binds one form-style query parameter into dest.
type queryParam struct {
	name     string
	required bool
	dest     any
}

func optional(name string, dest any) queryParam { return queryParam{name: name, dest: dest} }

func required(name string, dest any) queryParam {
	return queryParam{name: name, required: true, dest: dest}
}

// bindQuery binds parameters the way generated oapi-codegen handlers do.
// Absent optional parameters leave dest untouched.
func bindQuery(r *http.Request, params ...queryParam) error {
	values := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, p.required, p.name, values, p.dest); err != nil {
			return fmt.Errorf("parameter %s: %w", p.name, err)
		}
	}
	return nil
}

// searchParams are the raw inputs of GET /api/search, also accepted as JSON by the warm-up endpoint.
type searchParams struct {
	Q     string  `json:"q"`
	Page  *int    `json:"page,omitempty"`
	Limit *int    `json:"limit,omitempty"`
	Sort  *string `json:"sort,omitempty"`
	Order *string `json:"order,omitempty"`
	Mode  *string `json:"mode,omitempty"`
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	err := bindQuery(r,
		required("q", &p.Q),
		optional("page", &p.Page),
		optional("limit", &p.Limit),
		optional("sort", &p.Sort),
		optional("order", &p.Order),
		optional("mode", &p.Mode),
	)
	return p, err
}

// toQuery applies defaults, clamping and allow-lists.
func (p searchParams) toQuery() (query.Query, error) {
	text := strings.TrimSpace(p.Q)
	if utf8.RuneCountInString(text) < MinQueryLength {
		return query.Query{}, fmt.Errorf("search query must be at least %d characters long", MinQueryLength)
	}

	by, err := ordering.ParseField(deref(p.Sort))
	if err != nil {
		return query.Query{}, err
	}
	dir, err := ordering.ParseDirection(deref(p.Order))
	if err != nil {
		return query.Query{}, err
	}
	m, err := mode.Parse(deref(p.Mode))
	if err != nil {
		return query.Query{}, err
	}

	page := max(derefOr(p.Page, DefaultPage), 1)
	limit := clamp(derefOr(p.Limit, query.DefaultLimit), 1, query.MaxLimit)

	q, err := query.New(text, page, limit, by, dir, m)
	if err != nil {
		return query.Query{}, fmt.Errorf("build query: %w", err)
	}
	return q, nil
}

// listParams are the query-string inputs of GET /api/documents.
type listParams struct {
	Page  *int
	Limit *int
	Sort  *string
	Order *string
}

func bindListParams(r *http.Request) (listParams, error) {
	var p listParams
	err := bindQuery(r,
		optional("page", &p.Page),
		optional("limit", &p.Limit),
		optional("sort", &p.Sort),
		optional("order", &p.Order),
	)
	return p, err
}

// sortField defaults to newest first. Relevance has no meaning outside a search.
func (p listParams) sortField() (ordering.Field, error) {
	if p.Sort == nil || *p.Sort == "" {
		return ordering.CreatedAt, nil
	}
	f, err := ordering.ParseField(*p.Sort)
	if err != nil {
		return "", err
	}
	if f == ordering.Relevance {
		return "", fmt.Errorf("unknown sort field %q", *p.Sort)
	}
	return f, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
