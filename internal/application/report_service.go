package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

// ReportService derives cross-person views from the live ledger.
type ReportService struct {
	engine *Engine
	logger *slog.Logger
}

// NewReportService constructs a report service.
func NewReportService(engine *Engine, logger *slog.Logger) *ReportService {
	return &ReportService{engine: engine, logger: defaultLogger(logger)}
}

// Summarize lists persons in net deficit and in net surplus. It is recomputed
// on every call.
func (s *ReportService) Summarize(ctx context.Context, actor domain.Actor) (ledger.Summary, error) {
	if s == nil || s.engine == nil {
		return ledger.Summary{}, fmt.Errorf("ReportService is nil")
	}
	if !access.IsManager(actor) {
		serviceLogger(ctx, s.logger, "ReportService", "Summarize", "actor_id", actor.ID).
			WarnContext(ctx, "report denied", "error_kind", ErrorKind(ErrUnauthorized))
		return ledger.Summary{}, ErrUnauthorized
	}

	var summary ledger.Summary
	_ = s.engine.read(func(doc *domain.Document) error {
		summary = ledger.Summarize(doc.Persons)
		return nil
	})
	return summary, nil
}
