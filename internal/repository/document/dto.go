package document

import (
	"strconv"
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Hash fields of a stored document.
const (
	fieldTitle      = "title"
	fieldFilename   = "filename"
	fieldContent    = "content"
	fieldFileSize   = "file_size"
	fieldMimeType   = "mime_type"
	fieldBlobHandle = "blob_handle"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

// metaFields are returned by list and search queries; content stays server-side.
var metaFields = []string{
	fieldTitle, fieldFilename, fieldFileSize, fieldMimeType,
	fieldBlobHandle, fieldCreatedAt, fieldUpdatedAt,
}

// buildHashFields converts a domain Document into a flat map for HSET.
func buildHashFields(doc *domdoc.Document) map[string]string {
	return map[string]string{
		fieldTitle:      doc.Title(),
		fieldFilename:   doc.Filename(),
		fieldContent:    doc.Content(),
		fieldFileSize:   strconv.FormatInt(doc.FileSize(), 10),
		fieldMimeType:   doc.MimeType(),
		fieldBlobHandle: doc.BlobHandle(),
		fieldCreatedAt:  strconv.FormatInt(doc.CreatedAt().UnixMilli(), 10),
		fieldUpdatedAt:  strconv.FormatInt(doc.UpdatedAt().UnixMilli(), 10),
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(
		id,
		m[fieldTitle],
		m[fieldFilename],
		m[fieldContent],
		parseInt(m[fieldFileSize]),
		m[fieldMimeType],
		m[fieldBlobHandle],
		parseMillis(m[fieldCreatedAt]),
		parseMillis(m[fieldUpdatedAt]),
	)
}

// parseRaw converts search entry fields into a ranked row.
func parseRaw(id string, score float64, m map[string]string) result.Raw {
	return result.Raw{
		ID:        id,
		Title:     m[fieldTitle],
		Filename:  m[fieldFilename],
		FileSize:  parseInt(m[fieldFileSize]),
		MimeType:  m[fieldMimeType],
		CreatedAt: parseMillis(m[fieldCreatedAt]),
		Score:     score,
	}
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseMillis(s string) time.Time {
	ms := parseInt(s)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
