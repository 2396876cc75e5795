package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxFilenameLength is the maximum stored filename length in characters.
const MaxFilenameLength = 255

// Document is the document aggregate (immutable value object).
type Document struct {
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

// New validates and creates a Document. The title is derived from the filename.
func New(id, filename, content string, fileSize int64, mimeType, blobHandle string, now time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if filename == "" {
		return Document{}, fmt.Errorf("filename is required")
	}
	if utf8.RuneCountInString(filename) > MaxFilenameLength {
		return Document{}, fmt.Errorf("filename too long (max %d chars)", MaxFilenameLength)
	}
	if strings.TrimSpace(content) == "" {
		return Document{}, fmt.Errorf("no text could be extracted")
	}
	if fileSize < 0 {
		return Document{}, fmt.Errorf("file size must not be negative")
	}

	return Document{
		id:         id,
		title:      TitleFromFilename(filename),
		filename:   filename,
		content:    content,
		fileSize:   fileSize,
		mimeType:   mimeType,
		blobHandle: blobHandle,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title, filename, content string,
	fileSize int64, mimeType, blobHandle string,
	createdAt, updatedAt time.Time,
) Document {
	return Document{
		id: id, title: title, filename: filename, content: content,
		fileSize: fileSize, mimeType: mimeType, blobHandle: blobHandle,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the display title.
func (d *Document) Title() string { return d.title }

// Filename returns the original upload filename.
func (d *Document) Filename() string { return d.filename }

// Content returns the extracted text.
func (d *Document) Content() string { return d.content }

// FileSize returns the raw upload size in bytes.
func (d *Document) FileSize() int64 { return d.fileSize }

// MimeType returns the upload media type.
func (d *Document) MimeType() string { return d.mimeType }

// BlobHandle returns the raw bytes handle in the blob store.
func (d *Document) BlobHandle() string { return d.blobHandle }

// CreatedAt returns the ingestion time.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last modification time.
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

var titleCaser = cases.Title(language.Und, cases.NoLower)

// TitleFromFilename turns "q3_sales-report.pdf" into "Q3 Sales Report".
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return base
	}
	return titleCaser.String(name)
}
