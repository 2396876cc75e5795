package document

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Save(ctx context.Context, doc *domdoc.Document) error
	FindByID(ctx context.Context, id string) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction) (
		docs []domdoc.Document, total int, err error,
	)
}

// BlobStore keeps the raw uploaded bytes.
type BlobStore interface {
	Save(ctx context.Context, data []byte) (string, error)
	Read(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}

// CacheInvalidator drops cached search results after the corpus changes.
type CacheInvalidator interface {
	Clear(ctx context.Context) (int, error)
}

// Extractor turns raw bytes of the given media type into indexable text.
type Extractor func(data []byte, mimeType string) (string, error)
