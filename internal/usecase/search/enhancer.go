package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Enhancer decorates ranked rows with a snippet, a highlighted title and display fields.
type Enhancer struct {
	texts  TextSource
	length int
	step   int
	logger *zap.Logger
}

// NewEnhancer creates an enhancer with the default snippet window.
func NewEnhancer(texts TextSource, logger *zap.Logger) *Enhancer {
	return &Enhancer{
		texts:  texts,
		length: DefaultSnippetLength,
		step:   DefaultSnippetStep,
		logger: logger.Named("enhancer"),
	}
}

// WithWindow sets the snippet window length and step, in characters.
func (e *Enhancer) WithWindow(length, step int) *Enhancer {
	if length > 0 {
		e.length = length
	}
	if step > 0 {
		e.step = step
	}
	return e
}

// Enhance decorates rows in order. A row whose text cannot be fetched is
// returned without snippet or highlighting. Stops when ctx is done.
func (e *Enhancer) Enhance(ctx context.Context, rows []result.Raw, terms []string) ([]result.Enhanced, error) {
	out := make([]result.Enhanced, 0, len(rows))
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enhance: %w", err)
		}
		out = append(out, e.enhanceRow(ctx, &rows[i], terms))
	}
	return out, nil
}

func (e *Enhancer) enhanceRow(ctx context.Context, r *result.Raw, terms []string) result.Enhanced {
	res := result.Enhanced{
		ID:                 r.ID,
		Title:              r.Title,
		Filename:           r.Filename,
		FileSize:           r.FileSize,
		MimeType:           r.MimeType,
		CreatedAt:          r.CreatedAt,
		RelevanceScore:     RoundScore(r.Score),
		TitleHighlighted:   html.EscapeString(r.Title),
		FileSizeFormatted:  FormatFileSize(r.FileSize),
		CreatedAtFormatted: FormatDate(r.CreatedAt),
	}

	text, err := e.texts.FullText(ctx, r.ID)
	if err != nil {
		e.logger.Warn("Document text unavailable, skipping snippet",
			zap.String("document_id", r.ID),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)),
		)
		return res
	}
	if text == "" {
		return res
	}

	res.Snippet = Snippet(text, terms, e.length, e.step)
	res.TitleHighlighted = HighlightHTML(r.Title, terms)
	return res
}
