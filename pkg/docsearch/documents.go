package docsearch

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
)

// DocumentService manages the document corpus.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Upload extracts text from the file and stores it with its raw bytes.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_upload", start, err) }()

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = detectMediaType(req.Filename, req.Data)
	}

	d, err := s.svc.Upload(ctx, documentuc.Upload{
		Filename: req.Filename,
		MimeType: mimeType,
		Data:     req.Data,
	})
	if err != nil {
		return Document{}, fmt.Errorf("upload: %w", err)
	}
	return fromInternalDocument(d), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(d), nil
}

// List returns a page of documents. Relevance is not a valid sort field here.
func (s *DocumentService) List(ctx context.Context, opts ListOptions) (_ DocumentList, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_list", start, err) }()

	by := opts.SortBy
	if by == "" {
		by = ordering.CreatedAt
	}
	if by == ordering.Relevance || !by.IsValid() {
		return DocumentList{}, fmt.Errorf("list documents: %w: sort field %q", ErrInvalidParameter, by)
	}
	dir := opts.Order
	if dir == "" {
		dir = ordering.Desc
	}
	if !dir.IsValid() {
		return DocumentList{}, fmt.Errorf("list documents: %w: sort order %q", ErrInvalidParameter, dir)
	}

	listing, err := s.svc.List(ctx, opts.Page, opts.Limit, by, dir)
	if err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]Document, len(listing.Documents))
	for i, d := range listing.Documents {
		docs[i] = fromInternalDocument(d)
	}
	return DocumentList{Documents: docs, Pagination: listing.Pagination}, nil
}

// Delete removes a document and its raw bytes.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Download returns a document with its original bytes.
func (s *DocumentService) Download(ctx context.Context, id string) (_ Document, _ []byte, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_download", start, err) }()

	d, data, err := s.svc.Download(ctx, id)
	if err != nil {
		return Document{}, nil, fmt.Errorf("download document: %w", err)
	}
	return fromInternalDocument(d), data, nil
}

// detectMediaType guesses a media type from the filename extension, then the content.
func detectMediaType(filename string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
