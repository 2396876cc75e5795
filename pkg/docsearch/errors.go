package docsearch

import "github.com/kailas-cloud/docsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidParameter     = domain.ErrInvalidParameter
	ErrInvalidQuery         = domain.ErrInvalidQuery
	ErrEngine               = domain.ErrEngine
	ErrDocumentNotFound     = domain.ErrDocumentNotFound
	ErrBlobNotFound         = domain.ErrBlobNotFound
	ErrUnsupportedMediaType = domain.ErrUnsupportedMediaType
	ErrPayloadTooLarge      = domain.ErrPayloadTooLarge
	ErrCacheBackend         = domain.ErrCacheBackend
)
