package ordering

import (
	"fmt"
	"strings"
)

// Field is a sortable result attribute.
type Field string

// Sortable fields.
const (
	Relevance Field = "relevance"
	CreatedAt Field = "created_at"
	Title     Field = "title"
	FileSize  Field = "file_size"
)

// IsValid checks if the field is sortable.
func (f Field) IsValid() bool {
	switch f {
	case Relevance, CreatedAt, Title, FileSize:
		return true
	}
	return false
}

// ParseField converts user input into a Field. Empty input means Relevance.
func ParseField(s string) (Field, error) {
	if s == "" {
		return Relevance, nil
	}
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown sort field %q", s)
	}
	return f, nil
}

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// IsValid checks if the direction is ASC or DESC.
func (d Direction) IsValid() bool { return d == Asc || d == Desc }

// ParseDirection converts user input (any case) into a Direction. Empty input means DESC.
func ParseDirection(s string) (Direction, error) {
	if s == "" {
		return Desc, nil
	}
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown sort order %q", s)
	}
	return d, nil
}
