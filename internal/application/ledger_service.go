package application

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

// LedgerService manages hour entries, their compensation state and the audit
// trail they produce.
type LedgerService struct {
	engine      *Engine
	clock       Clock
	idGenerator func() string
	logger      *slog.Logger
}

// NewLedgerService constructs a ledger service with the provided dependencies.
func NewLedgerService(engine *Engine, clock Clock, idGenerator func() string) *LedgerService {
	return NewLedgerServiceWithLogger(engine, clock, idGenerator, nil)
}

// NewLedgerServiceWithLogger constructs a ledger service with a specified logger.
func NewLedgerServiceWithLogger(engine *Engine, clock Clock, idGenerator func() string, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		engine:      engine,
		clock:       defaultClock(clock),
		idGenerator: defaultIDGenerator(idGenerator),
		logger:      defaultLogger(logger),
	}
}

func (s *LedgerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LedgerService", operation, attrs...)
}

// AddEntry appends a credit or debit to a person's ledger.
func (s *LedgerService) AddEntry(ctx context.Context, params AddEntryParams) (entry domain.HourEntry, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("LedgerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddEntry",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add hour entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("entry_id", entry.ID, "signed_hours", entry.SignedHours).InfoContext(ctx, "hour entry added")
	}()

	if !access.CanPerform(params.Actor, domain.CapManageHours) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.mutate(ctx, "AddEntry", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		if vErr := validateEntryInput(params.Input); vErr.HasErrors() {
			return false, vErr
		}

		now := s.clock.Now()
		entry = domain.HourEntry{
			ID:          s.idGenerator(),
			Date:        params.Input.Date,
			SignedHours: params.Input.Kind.Sign() * params.Input.Hours,
			Reason:      strings.TrimSpace(params.Input.Reason),
			CreatedBy:   params.Actor.Ref(),
			CreatedAt:   now,
		}
		person.HoursEntries = append(person.HoursEntries, entry)
		record(person, s.idGenerator(), params.Actor, domain.ActionCreateEntry, now, "Criou lançamento "+describeEntry(entry))
		return true, nil
	})
	return
}

// EditEntry overwrites the mutable fields of an entry. The compensated flag is
// set directly; compensation attribution is left as it was.
func (s *LedgerService) EditEntry(ctx context.Context, params EditEntryParams) (entry domain.HourEntry, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("LedgerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "EditEntry",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
		"entry_id", params.EntryID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit hour entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("signed_hours", entry.SignedHours).InfoContext(ctx, "hour entry edited")
	}()

	if !access.CanPerform(params.Actor, domain.CapManageHours) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.mutate(ctx, "EditEntry", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		existing, ok := person.Entry(params.EntryID)
		if !ok {
			return false, ErrNotFound
		}
		if vErr := validateEntryInput(params.Input); vErr.HasErrors() {
			return false, vErr
		}

		now := s.clock.Now()
		ref := params.Actor.Ref()
		existing.Date = params.Input.Date
		existing.SignedHours = params.Input.Kind.Sign() * params.Input.Hours
		existing.Reason = strings.TrimSpace(params.Input.Reason)
		// Credits are never compensated.
		existing.Compensated = params.Compensated && existing.IsDebit()
		if !existing.IsDebit() {
			existing.CompensatedBy = nil
			existing.CompensatedAt = nil
		}
		existing.LastModifiedBy = &ref
		existing.LastModifiedAt = &now

		entry = existing.Clone()
		record(person, s.idGenerator(), params.Actor, domain.ActionEditEntry, now, "Editou lançamento "+describeEntry(entry))
		return true, nil
	})
	return
}

// DeleteEntry removes an entry from the ledger.
func (s *LedgerService) DeleteEntry(ctx context.Context, params DeleteEntryParams) (err error) {
	if s == nil || s.engine == nil {
		return fmt.Errorf("LedgerService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteEntry",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
		"entry_id", params.EntryID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete hour entry", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "hour entry deleted")
	}()

	if !access.CanPerform(params.Actor, domain.CapManageHours) {
		return ErrUnauthorized
	}

	return s.engine.mutate(ctx, "DeleteEntry", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		removed, ok := person.RemoveEntry(params.EntryID)
		if !ok {
			return false, ErrNotFound
		}
		record(person, s.idGenerator(), params.Actor, domain.ActionDeleteEntry, s.clock.Now(), "Excluiu lançamento "+describeEntry(removed))
		return true, nil
	})
}

// SetCompensated marks a debit as resolved or reopens it. On a credit the call
// is accepted and audited but leaves the entry untouched.
func (s *LedgerService) SetCompensated(ctx context.Context, params SetCompensatedParams) (entry domain.HourEntry, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("LedgerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetCompensated",
		"actor_id", params.Actor.ID,
		"person_id", params.PersonID,
		"entry_id", params.EntryID,
		"compensated", params.Compensated,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to toggle compensation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "compensation toggled")
	}()

	if !access.CanPerform(params.Actor, domain.CapManageHours) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.mutate(ctx, "SetCompensated", func(doc *domain.Document) (bool, error) {
		person, err := lookupPerson(doc, params.PersonID)
		if err != nil {
			return false, err
		}
		existing, ok := person.Entry(params.EntryID)
		if !ok {
			return false, ErrNotFound
		}

		now := s.clock.Now()
		if existing.IsDebit() {
			existing.Compensated = params.Compensated
			if params.Compensated {
				ref := params.Actor.Ref()
				existing.CompensatedBy = &ref
				existing.CompensatedAt = &now
			} else {
				existing.CompensatedBy = nil
				existing.CompensatedAt = nil
			}
		}

		action, details := domain.ActionCompensated, "Compensou lançamento "+existing.ID
		if !params.Compensated {
			action, details = domain.ActionUncompensated, "Desfez compensação de "+existing.ID
		}
		entry = existing.Clone()
		record(person, s.idGenerator(), params.Actor, action, now, details)
		return true, nil
	})
	return
}

// NetBalance returns the derived balance of a person's ledger.
func (s *LedgerService) NetBalance(ctx context.Context, actor domain.Actor, personID string) (ledger.Balance, error) {
	entries, err := s.ListEntries(ctx, actor, personID)
	if err != nil {
		return ledger.Balance{}, err
	}
	return ledger.NetBalance(entries), nil
}

// ListEntries returns the person's entries in creation order.
func (s *LedgerService) ListEntries(ctx context.Context, actor domain.Actor, personID string) ([]domain.HourEntry, error) {
	person, err := s.person(ctx, actor, personID)
	if err != nil {
		return nil, err
	}
	return person.HoursEntries, nil
}

// AuditTrail returns the person's audit events, newest first. The sequence is
// backed by a snapshot and may be consumed after the call returns.
func (s *LedgerService) AuditTrail(ctx context.Context, actor domain.Actor, personID string) (iter.Seq[domain.AuditEvent], error) {
	person, err := s.person(ctx, actor, personID)
	if err != nil {
		return nil, err
	}
	return person.AuditDescending(), nil
}

// ListAudit collects AuditTrail into a slice.
func (s *LedgerService) ListAudit(ctx context.Context, actor domain.Actor, personID string) ([]domain.AuditEvent, error) {
	events, err := s.AuditTrail(ctx, actor, personID)
	if err != nil {
		return nil, err
	}
	out := slices.Collect(events)
	if out == nil {
		out = []domain.AuditEvent{}
	}
	return out, nil
}

// person returns a snapshot of one person after checking read access.
func (s *LedgerService) person(ctx context.Context, actor domain.Actor, personID string) (*domain.Person, error) {
	if s == nil || s.engine == nil {
		return nil, fmt.Errorf("LedgerService is nil")
	}
	if !access.CanView(actor, personID) {
		s.loggerWith(ctx, "Read", "actor_id", actor.ID, "person_id", personID).
			WarnContext(ctx, "read denied", "error_kind", ErrorKind(ErrUnauthorized))
		return nil, ErrUnauthorized
	}

	var snapshot domain.Person
	err := s.engine.read(func(doc *domain.Document) error {
		person, err := lookupPerson(doc, personID)
		if err != nil {
			return err
		}
		snapshot = person.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func validateEntryInput(input EntryInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if input.Kind != domain.KindCredit && input.Kind != domain.KindDebit {
		vErr.add("kind", "kind must be credit or debit")
	}
	if math.IsNaN(input.Hours) || math.IsInf(input.Hours, 0) || input.Hours <= 0 {
		vErr.add("hours", "hours must be a positive number")
	}
	return vErr
}
