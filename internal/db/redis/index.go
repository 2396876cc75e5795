package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// CreateIndex issues FT.CREATE for def. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex drops the index definition only; document hashes stay in place.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isUnknownIndex(err):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists reports whether FT.INFO knows the index.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isUnknownIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

// buildCreateArgs renders def as FT.CREATE arguments (without the command name).
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("index %q: %w", def.Name, err)
	}

	on := def.StorageType
	if on == "" {
		on = db.StorageHash
	}
	out := []string{def.Name, "ON", string(on)}

	if n := len(def.Prefixes); n > 0 {
		out = append(append(out, "PREFIX", strconv.Itoa(n)), def.Prefixes...)
	}
	if def.Language != "" {
		out = append(out, "LANGUAGE", def.Language)
	}

	out = append(out, "SCHEMA")
	for i := range def.Fields {
		field, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		out = append(out, field...)
	}
	return out, nil
}

// buildFieldArgs renders one SCHEMA entry: name [AS alias] type [options] [SORTABLE].
func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("schema field without a name")
	}

	out := []string{f.Name}
	if f.Alias != "" {
		out = append(out, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldText:
		out = append(out, "TEXT")
		if f.NoStem {
			out = append(out, "NOSTEM")
		}
		if f.Weight > 0 {
			out = append(out, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
		}
	case db.IndexFieldNumeric:
		out = append(out, "NUMERIC")
	case db.IndexFieldTag:
		out = append(out, "TAG")
		if f.TagSeparator != "" {
			out = append(out, "SEPARATOR", f.TagSeparator)
		}
	default:
		return nil, fmt.Errorf("field %q: unsupported type %d", f.Name, f.Type)
	}

	if f.Sortable {
		out = append(out, "SORTABLE")
	}
	return out, nil
}
