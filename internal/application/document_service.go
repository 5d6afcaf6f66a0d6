package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
)

// DocumentService exports and imports the whole document.
type DocumentService struct {
	engine *Engine
	logger *slog.Logger
}

// NewDocumentService constructs a document service.
func NewDocumentService(engine *Engine, logger *slog.Logger) *DocumentService {
	return &DocumentService{engine: engine, logger: defaultLogger(logger)}
}

// Export returns a copy of the live document.
func (s *DocumentService) Export(ctx context.Context, actor domain.Actor) (domain.Document, error) {
	if s == nil || s.engine == nil {
		return domain.Document{}, fmt.Errorf("DocumentService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "DocumentService", "Export", "actor_id", actor.ID)
	if !access.IsManager(actor) {
		logger.ErrorContext(ctx, "failed to export document", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return domain.Document{}, ErrUnauthorized
	}

	doc := s.engine.Snapshot()
	logger.InfoContext(ctx, "document exported", "persons", len(doc.Persons), "accounts", len(doc.Accounts))
	return doc, nil
}

// Import validates doc and replaces the live document with it atomically.
func (s *DocumentService) Import(ctx context.Context, actor domain.Actor, doc domain.Document) (err error) {
	if s == nil || s.engine == nil {
		return fmt.Errorf("DocumentService is nil")
	}

	logger := serviceLogger(ctx, s.logger, "DocumentService", "Import",
		"actor_id", actor.ID,
		"persons", len(doc.Persons),
		"accounts", len(doc.Accounts),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import document", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "document imported")
	}()

	if actor.Role != domain.RoleSuper {
		return ErrUnauthorized
	}

	doc = doc.Clone()
	doc.Normalize()
	if problems := doc.Validate(); len(problems) > 0 {
		return &ValidationError{FieldErrors: problems}
	}
	return s.engine.replace(ctx, "Import", doc)
}
