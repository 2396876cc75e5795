package pgdocument

import (
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

type docRow struct {
	id         string
	title      string
	filename   string
	content    string
	fileSize   int64
	mimeType   string
	blobHandle string
	createdAt  time.Time
	updatedAt  time.Time
}

func (d *docRow) toDomain() domdoc.Document {
	return domdoc.Reconstruct(
		d.id, d.title, d.filename, d.content, d.fileSize,
		d.mimeType, d.blobHandle, d.createdAt.UTC(), d.updatedAt.UTC(),
	)
}
