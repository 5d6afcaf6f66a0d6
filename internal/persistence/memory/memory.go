// Package memory keeps the document in process memory. It backs tests and the
// "memory" storage mode.
package memory

import (
	"context"
	"sync"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

// Store holds a deep copy of the last saved document.
type Store struct {
	mu    sync.RWMutex
	doc   domain.Document
	saved bool
	saves int
}

// New returns an empty store. Load reports persistence.ErrNotFound until the
// first Save.
func New() *Store {
	return &Store{}
}

// NewWithDocument returns a store that already holds doc.
func NewWithDocument(doc domain.Document) *Store {
	return &Store{doc: doc.Clone(), saved: true}
}

// Load returns a copy of the stored document.
func (s *Store) Load(context.Context) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.saved {
		return domain.Document{}, persistence.ErrNotFound
	}
	return s.doc.Clone(), nil
}

// Save replaces the stored document with a copy of doc.
func (s *Store) Save(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc.Clone()
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
