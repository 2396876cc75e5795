package chi

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/logger"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// multipartOverhead allows for boundaries and part headers on top of the file itself.
const multipartOverhead = 64 << 10

// uploadFields are the accepted multipart field names, in lookup order.
var uploadFields = []string{"file", "document"}

// documentResponse is the public view of a document.
type documentResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Filename           string    `json:"filename"`
	FileSize           int64     `json:"file_size"`
	FileSizeFormatted  string    `json:"file_size_formatted"`
	MimeType           string    `json:"mime_type"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedAtFormatted string    `json:"created_at_formatted"`
	UpdatedAt          time.Time `json:"updated_at"`
	Content            string    `json:"content,omitempty"`
}

type documentListResponse struct {
	Items      []documentResponse `json:"items"`
	Pagination result.Pagination  `json:"pagination"`
}

type deletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// UploadDocument handles POST /api/documents (multipart "file").
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	limit := s.documents.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				fmt.Sprintf("file exceeds %d bytes", limit))
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := formFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "file upload failed")
		return
	}

	doc, err := s.documents.Upload(r.Context(), documentuc.Upload{
		Filename: header.Filename,
		MimeType: partMediaType(header, data),
		Data:     data,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("document uploaded",
		zap.String("document_id", doc.ID()),
		zap.String("filename", doc.Filename()),
		zap.Int64("file_size", doc.FileSize()),
	)
	writeData(w, http.StatusCreated, documentToResponse(&doc, false))
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	by, err := params.sortField()
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	dir, err := ordering.ParseDirection(deref(params.Order))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	page, limit := derefOr(params.Page, DefaultPage), derefOr(params.Limit, 0)
	listing, err := s.documents.List(r.Context(), page, limit, by, dir)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(listing.Documents))
	for i := range listing.Documents {
		items[i] = documentToResponse(&listing.Documents[i], false)
	}
	writeData(w, http.StatusOK, documentListResponse{Items: items, Pagination: listing.Pagination})
}

// GetDocument handles GET /api/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, documentToResponse(&doc, true))
}

// DownloadDocument handles GET /api/documents/{id}/download and streams the original bytes.
func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, data, err := s.documents.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	contentType := doc.MimeType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename()})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteDocument handles DELETE /api/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("document deleted", zap.String("document_id", id))
	writeData(w, http.StatusOK, deletedResponse{ID: id, Deleted: true})
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range uploadFields {
		file, header, err := r.FormFile(name)
		if err == nil {
			return file, header, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("read form file %q: %w", name, err)
		}
	}
	return nil, nil, errors.New("no file uploaded")
}

// partMediaType trusts a specific part Content-Type, then the file extension, then sniffing.
func partMediaType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(header.Filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

func documentToResponse(d *domdoc.Document, withContent bool) documentResponse {
	resp := documentResponse{
		ID:                 d.ID(),
		Title:              d.Title(),
		Filename:           d.Filename(),
		FileSize:           d.FileSize(),
		FileSizeFormatted:  searchuc.FormatFileSize(d.FileSize()),
		MimeType:           d.MimeType(),
		CreatedAt:          d.CreatedAt(),
		CreatedAtFormatted: searchuc.FormatDate(d.CreatedAt()),
		UpdatedAt:          d.UpdatedAt(),
	}
	if withContent {
		resp.Content = d.Content()
	}
	return resp
}
