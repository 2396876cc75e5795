package domain

import "errors"

var (
	// ErrInvalidParameter signals a search parameter outside its allowed set.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidQuery signals query syntax rejected by the relevance engine.
	ErrInvalidQuery = errors.New("invalid query syntax")
	// ErrEngine signals a relevance engine failure.
	ErrEngine = errors.New("search engine error")
	// ErrStoreUnavailable signals a document store lookup failure.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrCacheBackend signals a result cache backend failure.
	ErrCacheBackend = errors.New("cache backend error")
	// ErrCacheMiss signals an absent cache entry.
	ErrCacheMiss = errors.New("cache miss")

	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrBlobNotFound signals missing raw bytes for a stored document.
	ErrBlobNotFound = errors.New("document content not found")
	// ErrUnsupportedMediaType signals a file type the extractor cannot read.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrPayloadTooLarge signals an upload above the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)
