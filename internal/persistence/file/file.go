// Package file stores the document as a single JSON file on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

// Store reads and writes one JSON document. Writes go to a temporary file that
// is renamed over the target, so a crash leaves either the old or the new
// document on disk.
type Store struct {
	path string
	mu   sync.Mutex
}

// New prepares a store at path, creating the parent directory when needed.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file: create data directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file is reported as persistence.ErrNotFound.
func (s *Store) Load(context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Document{}, persistence.ErrNotFound
		}
		return domain.Document{}, fmt.Errorf("file: read %s: %w", s.path, err)
	}
	return persistence.Decode(data)
}

// Save writes doc atomically.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := persistence.Encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("file: write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("file: replace %s: %w", s.path, err)
	}
	return nil
}
