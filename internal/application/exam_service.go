package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/scheduler"
)

// ExamService manages the set of exam dates of each person.
type ExamService struct {
	engine      *Engine
	clock       Clock
	idGenerator func() string
	logger      *slog.Logger
}

// NewExamService constructs an exam service with the provided dependencies.
func NewExamService(engine *Engine, clock Clock, idGenerator func() string) *ExamService {
	return NewExamServiceWithLogger(engine, clock, idGenerator, nil)
}

// NewExamServiceWithLogger constructs an exam service with a specified logger.
func NewExamServiceWithLogger(engine *Engine, clock Clock, idGenerator func() string, logger *slog.Logger) *ExamService {
	return &ExamService{
		engine:      engine,
		clock:       defaultClock(clock),
		idGenerator: defaultIDGenerator(idGenerator),
		logger:      defaultLogger(logger),
	}
}

func (s *ExamService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ExamService", operation, attrs...)
}

// AddExamDate adds date to the person's exam dates and returns the resulting
// set. The person themselves is held to the blocked window and is never
// audited; a manager bypasses the window and every call is audited, even when
// the date was already present.
func (s *ExamService) AddExamDate(ctx context.Context, params ExamDateParams) (dates []domain.Date, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("ExamService is nil")
		return
	}

	selfService := access.OwnsPerson(params.Actor, params.PersonID)
	logger := s.loggerWith(ctx, "AddExamDate",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
		"date", params.Date.String(),
		"self_service", selfService,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add exam date", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "exam date added")
	}()

	if !selfService && !access.IsManager(params.Actor) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.mutate(ctx, "AddExamDate", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		if params.Date.IsZero() {
			return false, &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}
		}

		if selfService {
			if err := scheduler.CheckSelfService(params.Date, s.clock.Today(), doc.Policy.BlockWindowDays); err != nil {
				var windowErr *scheduler.WindowError
				if errors.As(err, &windowErr) {
					return false, &BlockedWindowError{Date: windowErr.Date, EarliestAllowed: windowErr.EarliestAllowed}
				}
				return false, err
			}
			added := person.AddExamDate(params.Date)
			dates = slices.Clone(person.ExamDates)
			return added, nil
		}

		person.AddExamDate(params.Date)
		record(person, s.idGenerator(), params.Actor, domain.ActionCreateProva, s.clock.Now(), "Criou prova "+params.Date.String())
		dates = slices.Clone(person.ExamDates)
		return true, nil
	})
	return
}

// RemoveExamDate removes date from the person's exam dates. Removing an absent
// date changes nothing and is not audited.
func (s *ExamService) RemoveExamDate(ctx context.Context, params ExamDateParams) (dates []domain.Date, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("ExamService is nil")
		return
	}

	selfService := access.OwnsPerson(params.Actor, params.PersonID)
	logger := s.loggerWith(ctx, "RemoveExamDate",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
		"date", params.Date.String(),
		"self_service", selfService,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove exam date", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "exam date removed")
	}()

	if !selfService && !access.IsManager(params.Actor) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.mutate(ctx, "RemoveExamDate", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		if params.Date.IsZero() {
			return false, &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}
		}

		removed := person.RemoveExamDate(params.Date)
		if removed && !selfService {
			record(person, s.idGenerator(), params.Actor, domain.ActionRemoveProva, s.clock.Now(), "Removeu prova "+params.Date.String())
		}
		dates = slices.Clone(person.ExamDates)
		return removed, nil
	})
	return
}

// ListExamDates returns the person's exam dates in ascending order.
func (s *ExamService) ListExamDates(ctx context.Context, actor domain.Actor, personID string) ([]domain.Date, error) {
	if s == nil || s.engine == nil {
		return nil, fmt.Errorf("ExamService is nil")
	}
	if !access.CanView(actor, personID) {
		return nil, ErrUnauthorized
	}

	var dates []domain.Date
	err := s.engine.read(func(doc *domain.Document) error {
		person, err := lookupPerson(doc, personID)
		if err != nil {
			return err
		}
		dates = slices.Clone(person.ExamDates)
		return nil
	})
	return dates, err
}

// EarliestSelfServiceDate returns the first date the person may add on their
// own today.
func (s *ExamService) EarliestSelfServiceDate() domain.Date {
	var window int
	_ = s.engine.read(func(doc *domain.Document) error {
		window = doc.Policy.BlockWindowDays
		return nil
	})
	return scheduler.EarliestSelfServiceDate(s.clock.Today(), window)
}
