package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// ErrNotFound signals an unknown blob handle.
var ErrNotFound = domain.ErrBlobNotFound

var bucketBlobs = []byte("blobs")

// Store keeps raw upload bytes in a bbolt file keyed by random handles.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the blob database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create blob dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open blob db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blob bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores data and returns its handle.
func (s *Store) Save(_ context.Context, data []byte) (string, error) {
	handle := uuid.NewString()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put([]byte(handle), data)
	})
	if err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	return handle, nil
}

// Read returns a copy of the bytes stored under handle.
func (s *Store) Read(_ context.Context, handle string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketBlobs).Get([]byte(handle))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", handle, err)
	}
	return out, nil
}

// Delete removes a blob. Deleting an unknown handle is not an error.
func (s *Store) Delete(_ context.Context, handle string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlobs).Delete([]byte(handle))
	})
	if err != nil {
		return fmt.Errorf("delete blob %s: %w", handle, err)
	}
	return nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database file is open and readable.
func (s *Store) Ping(_ context.Context) error {
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketBlobs) == nil {
			return fmt.Errorf("bucket %s missing", bucketBlobs)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("ping blob db: %w", err)
	}
	return nil
}
