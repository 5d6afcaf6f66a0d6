package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
)

// PolicyService reads and updates the process-wide policy.
type PolicyService struct {
	engine *Engine
	logger *slog.Logger
}

// NewPolicyService constructs a policy service.
func NewPolicyService(engine *Engine, logger *slog.Logger) *PolicyService {
	return &PolicyService{engine: engine, logger: defaultLogger(logger)}
}

// GetPolicy returns the current policy.
func (s *PolicyService) GetPolicy(context.Context) domain.GlobalPolicy {
	var policy domain.GlobalPolicy
	_ = s.engine.read(func(doc *domain.Document) error {
		policy = doc.Policy
		return nil
	})
	return policy
}

// SetBlockWindowDays changes the blocked window used for self-service exam
// dates.
func (s *PolicyService) SetBlockWindowDays(ctx context.Context, actor domain.Actor, days int) (policy domain.GlobalPolicy, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("PolicyService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "PolicyService", "SetBlockWindowDays",
		"actor_id", actor.ID,
		"days", days,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update policy", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "policy updated")
	}()

	if !access.IsManager(actor) {
		err = ErrUnauthorized
		return
	}
	if days < 0 {
		err = &ValidationError{FieldErrors: map[string]string{"block_window_days": "must not be negative"}}
		return
	}

	err = s.engine.mutate(ctx, "SetBlockWindowDays", func(doc *domain.Document) (bool, error) {
		changed := doc.Policy.BlockWindowDays != days
		doc.Policy.BlockWindowDays = days
		policy = doc.Policy
		return changed, nil
	})
	return
}
