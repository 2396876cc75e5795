package pgdocument

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// SearchRanked runs a ranked full-text query ordered by ts_rank_cd or a document field.
func (r *Repo) SearchRanked(
	ctx context.Context, eq query.EngineQuery, page, limit int,
	by ordering.Field, dir ordering.Direction,
) (result.Ranked, error) {
	tsq := buildTSQuery(eq)
	if tsq == "" {
		return result.Ranked{}, nil
	}

	q := fmt.Sprintf(`
		SELECT id, title, filename, file_size, mime_type, created_at,
		       ts_rank_cd(search_vector, q) AS score
		FROM documents, to_tsquery('english', $1) q
		WHERE search_vector @@ q
		%s
		LIMIT $2 OFFSET $3`, orderBy(by, dir))

	rows, err := r.db.Query(ctx, q, tsq, limit, (page-1)*limit)
	if err != nil {
		return result.Ranked{}, searchError(err)
	}
	defer rows.Close()

	var out []result.Raw
	for rows.Next() {
		var raw result.Raw
		var score float32
		if err := rows.Scan(
			&raw.ID, &raw.Title, &raw.Filename, &raw.FileSize, &raw.MimeType, &raw.CreatedAt, &score,
		); err != nil {
			return result.Ranked{}, fmt.Errorf("scan match: %w", err)
		}
		raw.CreatedAt = raw.CreatedAt.UTC()
		raw.Score = float64(score)
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return result.Ranked{}, searchError(err)
	}

	var total int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE search_vector @@ to_tsquery('english', $1)`, tsq,
	).Scan(&total)
	if err != nil {
		return result.Ranked{}, searchError(err)
	}

	return result.Ranked{Rows: out, Total: total}, nil
}

func searchError(err error) error {
	if isSyntaxError(err) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return fmt.Errorf("full-text query: %w", err)
}

// buildTSQuery renders an engine query as to_tsquery input. An empty string
// means nothing can match (no terms, or only exclusions).
func buildTSQuery(eq query.EngineQuery) string {
	clauses := eq.Clauses()
	if !query.HasPositive(clauses) {
		return ""
	}

	var must, should, not []string
	for _, c := range clauses {
		switch c.Occur {
		case query.Must:
			must = append(must, renderLexeme(c))
		case query.MustNot:
			not = append(not, "!"+renderLexeme(c))
		default:
			should = append(should, renderLexeme(c))
		}
	}

	parts := must
	if len(must) == 0 {
		if len(should) == 1 {
			parts = []string{should[0]}
		} else {
			parts = []string{"(" + strings.Join(should, " | ") + ")"}
		}
	}
	parts = append(parts, not...)
	return strings.Join(parts, " & ")
}

func renderLexeme(c query.Clause) string {
	switch {
	case c.Phrase:
		return "(" + strings.Join(strings.Fields(c.Text), " <-> ") + ")"
	case c.Prefix:
		return c.Text + ":*"
	default:
		return c.Text
	}
}
