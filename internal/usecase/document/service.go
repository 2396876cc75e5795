package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/extract"
)

// DefaultMaxUploadBytes bounds an upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Upload is one uploaded file.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Listing is one page of documents.
type Listing struct {
	Documents  []domdoc.Document
	Pagination result.Pagination
}

// Service handles document ingestion, retrieval and removal.
// Every change to the corpus clears the search result cache.
type Service struct {
	repo            Repository
	blobs           BlobStore
	cache           CacheInvalidator
	extract         Extractor
	maxUploadBytes  int64
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
	newID           func() string
	uploads         *prometheus.CounterVec
	logger          *zap.Logger
}

// New creates a document service.
func New(repo Repository, blobs BlobStore, cache CacheInvalidator, logger *zap.Logger) *Service {
	return &Service{
		repo:            repo,
		blobs:           blobs,
		cache:           cache,
		extract:         extract.Extract,
		maxUploadBytes:  DefaultMaxUploadBytes,
		defaultPageSize: 10,
		maxPageSize:     100,
		now:             time.Now,
		newID:           uuid.NewString,
		logger:          logger.Named("documents"),
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithMaxUploadBytes sets the upload size limit.
func (s *Service) WithMaxUploadBytes(n int64) *Service {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// WithExtractor replaces the text extractor.
func (s *Service) WithExtractor(fn Extractor) *Service {
	s.extract = fn
	return s
}

// WithMetrics sets a counter vec with labels "mime_type" and "status".
func (s *Service) WithMetrics(uploads *prometheus.CounterVec) *Service {
	s.uploads = uploads
	return s
}

// MaxUploadBytes returns the upload size limit.
func (s *Service) MaxUploadBytes() int64 { return s.maxUploadBytes }

// Upload extracts text from the file, stores its bytes and indexes the document.
func (s *Service) Upload(ctx context.Context, in Upload) (domdoc.Document, error) {
	doc, err := s.upload(ctx, in)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if s.uploads != nil {
		s.uploads.WithLabelValues(mediaLabel(in.MimeType), status).Inc()
	}
	return doc, err
}

func (s *Service) upload(ctx context.Context, in Upload) (domdoc.Document, error) {
	if len(in.Data) == 0 {
		return domdoc.Document{}, fmt.Errorf("%w: file is empty", domain.ErrInvalidParameter)
	}
	if int64(len(in.Data)) > s.maxUploadBytes {
		return domdoc.Document{}, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrPayloadTooLarge, len(in.Data), s.maxUploadBytes)
	}

	text, err := s.extract(in.Data, in.MimeType)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedMediaType) {
			return domdoc.Document{}, err
		}
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidParameter, err)
	}

	handle, err := s.blobs.Save(ctx, in.Data)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("save blob: %w", err)
	}

	doc, err := domdoc.New(
		s.newID(), filepath.Base(in.Filename), text,
		int64(len(in.Data)), in.MimeType, handle, s.now().UTC(),
	)
	if err != nil {
		s.dropBlob(ctx, handle)
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidParameter, err)
	}

	if err := s.repo.Save(ctx, &doc); err != nil {
		s.dropBlob(ctx, handle)
		return domdoc.Document{}, fmt.Errorf("save document: %w", err)
	}

	s.invalidate(ctx, "upload")
	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID()),
		zap.String("filename", doc.Filename()),
		zap.Int64("file_size", doc.FileSize()),
	)
	return doc, nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a page of documents. Page is clamped to >= 1 and limit to the configured bounds.
func (s *Service) List(
	ctx context.Context, page, limit int, by ordering.Field, dir ordering.Direction,
) (Listing, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, total, err := s.repo.List(ctx, page, limit, by, dir)
	if err != nil {
		return Listing{}, fmt.Errorf("list documents: %w", err)
	}
	return Listing{Documents: docs, Pagination: result.NewPagination(page, limit, total)}, nil
}

// Delete removes a document and its stored bytes.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.dropBlob(ctx, doc.BlobHandle())
	s.invalidate(ctx, "delete")
	return nil
}

// Download returns a document with its original bytes.
func (s *Service) Download(ctx context.Context, id string) (domdoc.Document, []byte, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domdoc.Document{}, nil, fmt.Errorf("get document: %w", err)
	}
	data, err := s.blobs.Read(ctx, doc.BlobHandle())
	if err != nil {
		return domdoc.Document{}, nil, fmt.Errorf("read blob: %w", err)
	}
	return doc, data, nil
}

func (s *Service) dropBlob(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := s.blobs.Delete(ctx, handle); err != nil {
		s.logger.Warn("Failed to delete blob", zap.String("handle", handle), zap.Error(err))
	}
}

// invalidate empties the result cache. Popular and recent query views are
// derived from cache entries, so they reset as well.
func (s *Service) invalidate(ctx context.Context, reason string) {
	n, err := s.cache.Clear(ctx)
	if err != nil {
		s.logger.Warn("Failed to clear search cache", zap.String("reason", reason), zap.Error(err))
		return
	}
	s.logger.Debug("Search cache cleared", zap.String("reason", reason), zap.Int("entries", n))
}

func mediaLabel(mimeType string) string {
	if extract.Supported(mimeType) {
		mt, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
		return strings.TrimSpace(mt)
	}
	return "other"
}
