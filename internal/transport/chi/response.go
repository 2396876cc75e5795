package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in the error envelope.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeNotFound             ErrorCode = "not_found"
	CodeMethodNotAllowed     ErrorCode = "method_not_allowed"
	CodeDocumentNotFound     ErrorCode = "document_not_found"
	CodeContentNotFound      ErrorCode = "content_not_found"
	CodePayloadTooLarge      ErrorCode = "payload_too_large"
	CodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	CodeInvalidQuery         ErrorCode = "invalid_query"
	CodeSearchEngineError    ErrorCode = "search_engine_error"
	CodeUnavailable          ErrorCode = "service_unavailable"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorBody is the error part of a failed response.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, Envelope{Error: &ErrorBody{Code: code, Message: message}})
}

// publicSentinels may be echoed to clients; anything else becomes "internal error".
var publicSentinels = []error{
	domain.ErrInvalidParameter,
	domain.ErrInvalidQuery,
	domain.ErrEngine,
	domain.ErrDocumentNotFound,
	domain.ErrBlobNotFound,
	domain.ErrUnsupportedMediaType,
	domain.ErrPayloadTooLarge,
	domain.ErrStoreUnavailable,
	domain.ErrCacheBackend,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range publicSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

// validationHandler echoes the full message of caller mistakes, which never carry internals.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidParameter) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
	return true
}

// defaultErrorHandlers is ordered: ErrInvalidQuery is wrapped in ErrEngine and must match first.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrEngine, http.StatusBadGateway, CodeSearchEngineError),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrBlobNotFound, http.StatusNotFound, CodeContentNotFound),
		sentinelHandler(domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge),
		sentinelHandler(domain.ErrUnsupportedMediaType,
			http.StatusUnsupportedMediaType, CodeUnsupportedMediaType),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeUnavailable),
		sentinelHandler(domain.ErrCacheBackend, http.StatusServiceUnavailable, CodeUnavailable),
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
	)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
