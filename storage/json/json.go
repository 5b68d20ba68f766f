package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/projecteru2/ovxview/lock"
	"github.com/projecteru2/ovxview/storage"
)

var _ storage.Store[struct{}] = (*Store[struct{}])(nil)

// Store keeps a document as one JSON file guarded by a locker.
// Writes go to a temp file first and are renamed into place.
type Store[T any] struct {
	path   string
	locker lock.Locker
}

// New creates a Store at path.
func New[T any](path string, locker lock.Locker) *Store[T] {
	return &Store[T]{path: path, locker: locker}
}

// With implements storage.Store.
func (s *Store[T]) With(ctx context.Context, fn func(*T) error) error {
	return lock.WithLock(ctx, s.locker, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// Update implements storage.Store.
func (s *Store[T]) Update(ctx context.Context, fn func(*T) error) error {
	return lock.WithLock(ctx, s.locker, func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return s.save(doc)
	})
}

func (s *Store[T]) load() (*T, error) {
	doc := new(T)
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	case len(data) > 0:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
	}
	if i, ok := any(doc).(storage.Initer); ok {
		i.Init()
	}
	return doc, nil
}

func (s *Store[T]) save(doc *T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}
