package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// scorer is the RediSearch ranking function.
const scorer = "BM25"

// minPrefixLen is the shortest term RediSearch expands as a prefix.
const minPrefixLen = 2

// SearchRanked runs a ranked full-text query over title and content.
func (r *Repo) SearchRanked(
	ctx context.Context, eq query.EngineQuery, page, limit int,
	by ordering.Field, dir ordering.Direction,
) (result.Ranked, error) {
	expr := translate(eq)
	if expr == "" {
		return result.Ranked{}, nil
	}
	q := "@" + fieldTitle + "|" + fieldContent + ":(" + expr + ")"
	offset := (page - 1) * limit

	if by == ordering.Relevance && dir == ordering.Asc {
		return r.searchRelevanceAsc(ctx, q, offset, limit)
	}

	tq := &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        q,
		Offset:       offset,
		Limit:        limit,
		WithScores:   true,
		Scorer:       scorer,
		ReturnFields: metaFields,
	}
	if by != ordering.Relevance {
		tq.SortBy = string(by)
		tq.SortAsc = dir == ordering.Asc
	}

	res, err := r.store.SearchText(ctx, tq)
	if err != nil {
		return result.Ranked{}, searchError(err)
	}
	return r.toRanked(res, false), nil
}

// searchRelevanceAsc serves lowest-score-first ordering. FT.SEARCH only ranks
// descending, so the mirrored descending window is fetched and reversed.
func (r *Repo) searchRelevanceAsc(ctx context.Context, q string, offset, limit int) (result.Ranked, error) {
	total, err := r.store.SearchCount(ctx, r.indexName(), q)
	if err != nil {
		return result.Ranked{}, searchError(err)
	}
	if offset >= total {
		return result.Ranked{Rows: []result.Raw{}, Total: total}, nil
	}

	start := total - offset - limit
	n := limit
	if start < 0 {
		n += start
		start = 0
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        q,
		Offset:       start,
		Limit:        n,
		WithScores:   true,
		Scorer:       scorer,
		ReturnFields: metaFields,
	})
	if err != nil {
		return result.Ranked{}, searchError(err)
	}
	ranked := r.toRanked(res, true)
	ranked.Total = total
	return ranked, nil
}

func (r *Repo) toRanked(res *db.SearchResult, reverse bool) result.Ranked {
	rows := make([]result.Raw, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, parseRaw(r.docID(e.Key), e.Score, e.Fields))
	}
	if reverse {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return result.Ranked{Rows: rows, Total: res.Total}
}

func searchError(err error) error {
	if errors.Is(err, db.ErrQuerySyntax) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return fmt.Errorf("ft.search: %w", err)
}

// translate renders an engine query in RediSearch syntax. An empty string
// means nothing can match (no terms, or only exclusions).
func translate(eq query.EngineQuery) string {
	clauses := eq.Clauses()
	if !query.HasPositive(clauses) {
		return ""
	}

	var must, should, not []string
	for _, c := range clauses {
		switch c.Occur {
		case query.Must:
			must = append(must, renderClause(c))
		case query.MustNot:
			not = append(not, "-"+renderClause(c))
		default:
			should = append(should, renderClause(c))
		}
	}

	parts := make([]string, 0, len(must)+len(should)+len(not)+1)
	parts = append(parts, must...)
	if len(must) > 0 {
		for _, s := range should {
			parts = append(parts, "~"+s)
		}
	} else if len(should) > 0 {
		parts = append(parts, "("+strings.Join(should, " | ")+")")
	}
	parts = append(parts, not...)
	return strings.Join(parts, " ")
}

func renderClause(c query.Clause) string {
	switch {
	case c.Phrase:
		return `"` + c.Text + `"`
	case c.Prefix && utf8.RuneCountInString(c.Text) >= minPrefixLen:
		return c.Text + "*"
	default:
		return c.Text
	}
}

// titlePrefixExpr turns "annual rep" into "annual rep*".
func titlePrefixExpr(prefix string) string {
	words := strings.FieldsFunc(strings.ToLower(prefix), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	if utf8.RuneCountInString(last) >= minPrefixLen {
		words[len(words)-1] = last + "*"
	}
	return strings.Join(words, " ")
}
