package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/example/intern-ledger/internal/access"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

// MaxSearchResults bounds SearchPersons.
const MaxSearchResults = 50

// PersonService answers read-only questions about tracked persons.
type PersonService struct {
	engine *Engine
	clock  Clock
	logger *slog.Logger
}

// NewPersonService constructs a person service.
func NewPersonService(engine *Engine, clock Clock, logger *slog.Logger) *PersonService {
	return &PersonService{engine: engine, clock: defaultClock(clock), logger: defaultLogger(logger)}
}

func (s *PersonService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PersonService", operation, attrs...)
}

// ListPersons returns every person ordered by name.
func (s *PersonService) ListPersons(ctx context.Context, actor domain.Actor) ([]PersonSummary, error) {
	return s.summaries(ctx, actor, "ListPersons", func(domain.Person) bool { return true }, 0)
}

// PersonsWithExamOn returns the persons with an exam on day, ordered by name.
func (s *PersonService) PersonsWithExamOn(ctx context.Context, actor domain.Actor, day domain.Date) ([]PersonSummary, error) {
	if day.IsZero() {
		return nil, &ValidationError{FieldErrors: map[string]string{"exam_date": "date is required"}}
	}
	return s.summaries(ctx, actor, "PersonsWithExamOn", func(p domain.Person) bool { return p.HasExamDate(day) }, 0)
}

// SearchPersons matches query against person names, case-insensitively.
func (s *PersonService) SearchPersons(ctx context.Context, actor domain.Actor, query string) ([]PersonSummary, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []PersonSummary{}, nil
	}
	return s.summaries(ctx, actor, "SearchPersons", func(p domain.Person) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}, MaxSearchResults)
}

func (s *PersonService) summaries(ctx context.Context, actor domain.Actor, operation string, keep func(domain.Person) bool, limit int) ([]PersonSummary, error) {
	if s == nil || s.engine == nil {
		return nil, fmt.Errorf("PersonService is nil")
	}
	if !access.IsManager(actor) {
		s.loggerWith(ctx, operation, "actor_id", actor.ID).
			WarnContext(ctx, "listing denied", "error_kind", ErrorKind(ErrUnauthorized))
		return nil, ErrUnauthorized
	}

	var persons []domain.Person
	_ = s.engine.read(func(doc *domain.Document) error {
		for _, p := range doc.Persons {
			if keep(p) {
				persons = append(persons, p.Clone())
			}
		}
		return nil
	})
	domain.SortPersonsByName(persons)
	if limit > 0 && len(persons) > limit {
		persons = persons[:limit]
	}

	out := make([]PersonSummary, 0, len(persons))
	for _, p := range persons {
		out = append(out, PersonSummary{
			ID:        p.ID,
			Name:      p.Name,
			ExamDates: p.ExamDates,
			Balance:   ledger.NetBalance(p.HoursEntries),
		})
	}
	return out, nil
}

// GetPerson returns one person, for its owner or a manager.
func (s *PersonService) GetPerson(ctx context.Context, actor domain.Actor, personID string) (domain.Person, error) {
	if s == nil || s.engine == nil {
		return domain.Person{}, fmt.Errorf("PersonService is nil")
	}
	if !access.CanView(actor, personID) {
		return domain.Person{}, ErrUnauthorized
	}

	var person domain.Person
	err := s.engine.read(func(doc *domain.Document) error {
		p, err := lookupPerson(doc, personID)
		if err != nil {
			return err
		}
		person = p.Clone()
		return nil
	})
	return person, err
}

// ExportPerson bundles a person with its login account, without the password
// hash.
func (s *PersonService) ExportPerson(ctx context.Context, actor domain.Actor, personID string) (export PersonExport, err error) {
	if s == nil || s.engine == nil {
		err = fmt.Errorf("PersonService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ExportPerson", "actor_id", actor.ID, "person_id", personID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export person", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "person exported")
	}()

	if !access.CanView(actor, personID) {
		err = ErrUnauthorized
		return
	}

	err = s.engine.read(func(doc *domain.Document) error {
		p, err := lookupPerson(doc, personID)
		if err != nil {
			return err
		}
		export = PersonExport{ExportedAt: s.clock.Now(), Person: p.Clone()}
		if account, ok := doc.AccountForPerson(personID); ok {
			view := toAccountView(*account, p.Name)
			export.Account = &view
		}
		return nil
	})
	return
}

func toAccountView(account domain.Account, personName string) AccountView {
	return AccountView{
		ID:                 account.ID,
		Username:           account.Username,
		Role:               account.Role,
		Capabilities:       slices.Clone(account.Capabilities),
		PersonID:           account.PersonID,
		PersonName:         personName,
		SelfPasswordChange: account.SelfPasswordChange,
		CreatedAt:          account.CreatedAt,
	}
}
