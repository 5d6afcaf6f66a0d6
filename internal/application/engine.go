package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

// Engine owns the live document. Every command runs against a deep copy that
// replaces the live value only when the command succeeds, and the result is
// flushed to the store while the lock is still held, so flushes happen in
// commit order.
type Engine struct {
	mu     sync.Mutex
	doc    domain.Document
	store  persistence.Store
	logger *slog.Logger
}

// NewEngine wraps an already loaded document. A nil store disables flushing.
func NewEngine(doc domain.Document, store persistence.Store) *Engine {
	return NewEngineWithLogger(doc, store, nil)
}

// NewEngineWithLogger wraps an already loaded document with a specified logger.
func NewEngineWithLogger(doc domain.Document, store persistence.Store, logger *slog.Logger) *Engine {
	doc = doc.Clone()
	doc.Normalize()
	return &Engine{doc: doc, store: store, logger: defaultLogger(logger)}
}

// LoadEngine reads the document from store. When nothing was saved yet, seed
// provides the initial document (an empty one when seed is nil), which is
// flushed immediately.
func LoadEngine(ctx context.Context, store persistence.Store, seed func() domain.Document, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, errors.New("application: store is required")
	}

	logger = defaultLogger(logger)
	doc, err := store.Load(ctx)
	switch {
	case err == nil:
		if problems := doc.Validate(); len(problems) > 0 {
			return nil, &ValidationError{FieldErrors: problems}
		}
		return NewEngineWithLogger(doc, store, logger), nil
	case errors.Is(err, persistence.ErrNotFound):
		var initial domain.Document
		if seed != nil {
			initial = seed()
		}
		engine := NewEngineWithLogger(initial, store, logger)
		if err := store.Save(ctx, engine.doc); err != nil {
			return nil, &PersistenceError{Op: "seed", Err: err}
		}
		logger.InfoContext(ctx, "initialised empty document", "persons", len(engine.doc.Persons))
		return engine, nil
	default:
		return nil, fmt.Errorf("application: load document: %w", err)
	}
}

// Snapshot returns a deep copy of the live document.
func (e *Engine) Snapshot() domain.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// read runs fn against the live document. fn must not retain references.
func (e *Engine) read(fn func(doc *domain.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.doc)
}

// mutate runs fn on a working copy. When fn fails nothing changes; when it
// reports no change the live document is kept and no flush happens. A flush
// failure is reported as *PersistenceError and the new document stays live.
func (e *Engine) mutate(ctx context.Context, op string, fn func(doc *domain.Document) (bool, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.doc.Clone()
	changed, err := fn(&working)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	e.doc = working
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.doc.Clone()); err != nil {
		e.logger.ErrorContext(ctx, "failed to flush document", "operation", op, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

// replace swaps the whole document, as an import does.
func (e *Engine) replace(ctx context.Context, op string, doc domain.Document) error {
	return e.mutate(ctx, op, func(working *domain.Document) (bool, error) {
		*working = doc.Clone()
		working.Normalize()
		return true, nil
	})
}
