package pgdocument

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// pgSyntaxError is the SQLSTATE for syntax_error, raised by to_tsquery on bad input.
const pgSyntaxError = "42601"

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const docColumns = `id, title, filename, content_text, file_size, mime_type, blob_handle, created_at, updated_at`

const metaColumns = `id, title, filename, file_size, mime_type, blob_handle, created_at, updated_at`

// Repo stores documents in PostgreSQL with a generated tsvector column.
// It serves both the document store and the relevance engine contracts.
type Repo struct {
	db DBTX
}

// New creates a PostgreSQL document repository.
func New(db DBTX) *Repo {
	return &Repo{db: db}
}

// Save inserts or replaces a document.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	const q = `
		INSERT INTO documents (` + docColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			filename = EXCLUDED.filename,
			content_text = EXCLUDED.content_text,
			file_size = EXCLUDED.file_size,
			mime_type = EXCLUDED.mime_type,
			blob_handle = EXCLUDED.blob_handle,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, q,
		doc.ID(), doc.Title(), doc.Filename(), doc.Content(), doc.FileSize(),
		doc.MimeType(), doc.BlobHandle(), doc.CreatedAt(), doc.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID(), err)
	}
	return nil
}

// FindByID returns a document with its full text.
func (r *Repo) FindByID(ctx context.Context, id string) (domdoc.Document, error) {
	q := `SELECT ` + docColumns + ` FROM documents WHERE id = $1`

	var d docRow
	err := r.db.QueryRow(ctx, q, id).Scan(
		&d.id, &d.title, &d.filename, &d.content, &d.fileSize,
		&d.mimeType, &d.blobHandle, &d.createdAt, &d.updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("select document %s: %w", id, err)
	}
	return d.toDomain(), nil
}

// FullText returns only the extracted text of a document.
func (r *Repo) FullText(ctx context.Context, id string) (string, error) {
	var text string
	err := r.db.QueryRow(ctx, `SELECT content_text FROM documents WHERE id = $1`, id).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrDocumentNotFound
		}
		return "", fmt.Errorf("select content %s: %w", id, err)
	}
	return text, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
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

	q := fmt.Sprintf(`SELECT %s FROM documents %s LIMIT $1 OFFSET $2`, metaColumns, orderBy(by, dir))
	rows, err := r.db.Query(ctx, q, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domdoc.Document
	for rows.Next() {
		var d docRow
		if err := rows.Scan(
			&d.id, &d.title, &d.filename, &d.fileSize,
			&d.mimeType, &d.blobHandle, &d.createdAt, &d.updatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// SuggestTitles returns up to limit distinct titles containing prefix, title ascending.
func (r *Repo) SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error) {
	const q = `
		SELECT DISTINCT title FROM documents
		WHERE title ILIKE $1 ESCAPE '\'
		ORDER BY title ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, q, "%"+escapeLike(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("suggest titles: %w", err)
	}
	defer rows.Close()

	titles := make([]string, 0, limit)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return titles, nil
}

// orderBy builds an ORDER BY clause from a whitelist. id breaks ties.
func orderBy(by ordering.Field, dir ordering.Direction) string {
	col := "created_at"
	switch by {
	case ordering.Relevance:
		col = "score"
	case ordering.Title:
		col = "title"
	case ordering.FileSize:
		col = "file_size"
	}
	d := "DESC"
	if dir == ordering.Asc {
		d = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id ASC", col, d)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isSyntaxError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgSyntaxError
}
