package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo stores documents as Redis hashes indexed by RediSearch.
// It serves both the document store and the relevance engine contracts.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. Keys live under keyPrefix + "doc:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// EnsureIndex creates the full-text index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, r.indexDefinition()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (r *Repo) indexDefinition() *db.IndexDefinition {
	return db.NewIndex(r.indexName()).
		Prefix(r.docPrefix()).
		Language("english").
		Text(fieldTitle, db.Weight(2), db.Sortable()).
		Text(fieldFilename, db.NoStem()).
		Text(fieldContent).
		Tag(fieldMimeType).
		Numeric(fieldFileSize, db.Sortable()).
		Numeric(fieldCreatedAt, db.Sortable()).
		MustBuild()
}

// Save writes a document.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	if err := r.store.HSet(ctx, r.docKey(doc.ID()), buildHashFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", doc.ID(), err)
	}
	return nil
}

// FindByID returns a document with its full text.
func (r *Repo) FindByID(ctx context.Context, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, r.docKey(id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return parseHashFields(id, m), nil
}

// FullText returns only the extracted text of a document.
func (r *Repo) FullText(ctx context.Context, id string) (string, error) {
	text, err := r.store.HGet(ctx, r.docKey(id), fieldContent)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", domain.ErrDocumentNotFound
		}
		return "", fmt.Errorf("hget %s: %w", id, err)
	}
	return text, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.docKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", id, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", id, err)
	}
	return nil
}

// List returns one page of documents (without content) and the total count.
// Relevance has no meaning without a query and falls back to created_at.
func (r *Repo) List(
	ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction,
) ([]domdoc.Document, int, error) {
	if by == ordering.Relevance {
		by = ordering.CreatedAt
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        "*",
		Offset:       (page - 1) * limit,
		Limit:        limit,
		SortBy:       string(by),
		SortAsc:      dir == ordering.Asc,
		ReturnFields: metaFields,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(res.Entries))
	for _, e := range res.Entries {
		docs = append(docs, parseHashFields(r.docID(e.Key), e.Fields))
	}
	return docs, res.Total, nil
}

// SuggestTitles returns up to limit distinct titles whose words start with prefix, title ascending.
func (r *Repo) SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error) {
	expr := titlePrefixExpr(prefix)
	if expr == "" {
		return []string{}, nil
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        "@" + fieldTitle + ":(" + expr + ")",
		Limit:        limit * 3,
		SortBy:       fieldTitle,
		SortAsc:      true,
		ReturnFields: []string{fieldTitle},
	})
	if err != nil {
		if errors.Is(err, db.ErrQuerySyntax) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("suggest titles: %w", err)
	}

	seen := make(map[string]bool, limit)
	titles := make([]string, 0, limit)
	for _, e := range res.Entries {
		t := e.Fields[fieldTitle]
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		titles = append(titles, t)
		if len(titles) == limit {
			break
		}
	}
	return titles, nil
}

func (r *Repo) indexName() string { return r.prefix + "docs:idx" }

func (r *Repo) docPrefix() string { return r.prefix + "doc:" }

func (r *Repo) docKey(id string) string { return r.docPrefix() + id }

func (r *Repo) docID(key string) string { return strings.TrimPrefix(key, r.docPrefix()) }
