// Package extract turns uploaded files into plain indexable text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Supported media types.
const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Supported reports whether the media type (parameters ignored) can be extracted.
func Supported(mimeType string) bool {
	switch baseType(mimeType) {
	case MediaTypeText, MediaTypePDF:
		return true
	}
	return false
}

// Extract returns the cleaned text of data interpreted as mimeType.
func Extract(data []byte, mimeType string) (string, error) {
	switch baseType(mimeType) {
	case MediaTypeText:
		return Clean(strings.ToValidUTF8(string(data), "")), nil
	case MediaTypePDF:
		text, err := pdfText(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return Clean(text), nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, mimeType)
	}
}

// Clean normalizes extracted text: line endings, runs of blanks and
// control characters are folded, paragraphs are kept.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRun.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	text = strings.TrimSpace(text)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return norm.NFC.String(text)
}

func pdfText(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func baseType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}
