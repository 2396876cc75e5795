package docsearch

import (
	"time"

	domcache "github.com/kailas-cloud/docsearch/internal/domain/cache"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Mode selects how query text is interpreted.
type Mode = mode.Mode

// Search modes.
const (
	ModeNatural  = mode.Natural
	ModeBoolean  = mode.Boolean
	ModeWildcard = mode.Wildcard
)

// SortField is a sortable attribute.
type SortField = ordering.Field

// Sort fields.
const (
	SortRelevance = ordering.Relevance
	SortCreatedAt = ordering.CreatedAt
	SortTitle     = ordering.Title
	SortFileSize  = ordering.FileSize
)

// SortOrder is a sort direction.
type SortOrder = ordering.Direction

// Sort directions.
const (
	Asc  = ordering.Asc
	Desc = ordering.Desc
)

// Search results share the wire types of the HTTP API.
type (
	Response   = result.Response
	Hit        = result.Enhanced
	Pagination = result.Pagination
	Metadata   = result.Metadata
)

// Cache reporting types.
type (
	CacheStats   = domcache.Stats
	PopularQuery = domcache.PopularQuery
	RecentQuery  = domcache.RecentQuery
	WarmupReport = domcache.WarmupReport
)

// Document is a stored document. Content is the extracted text.
type Document struct {
	ID        string
	Title     string
	Filename  string
	Content   string
	FileSize  int64
	MimeType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentList is one page of documents.
type DocumentList struct {
	Documents  []Document
	Pagination Pagination
}

// UploadRequest is a file to ingest. An empty MimeType is detected from the
// filename extension, then from the content.
type UploadRequest struct {
	Filename string
	MimeType string
	Data     []byte
}

// ListOptions selects a page of documents. Zero values take the defaults:
// page 1, the configured page size, created_at descending.
type ListOptions struct {
	Page   int
	Limit  int
	SortBy SortField
	Order  SortOrder
}

func fromInternalDocument(d domdoc.Document) Document {
	return Document{
		ID:        d.ID(),
		Title:     d.Title(),
		Filename:  d.Filename(),
		Content:   d.Content(),
		FileSize:  d.FileSize(),
		MimeType:  d.MimeType(),
		CreatedAt: d.CreatedAt(),
		UpdatedAt: d.UpdatedAt(),
	}
}
