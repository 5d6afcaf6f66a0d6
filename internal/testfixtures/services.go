package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
	"github.com/example/intern-ledger/internal/persistence/memory"
)

// FastPasswordHasher hashes with minimal argon2id cost so tests stay quick.
func FastPasswordHasher() application.PasswordHasher {
	return application.NewPasswordHasher(application.Argon2idParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
}

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Hasher      application.PasswordHasher
	Logger      *slog.Logger
	SessionTTL  time.Duration
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Hasher:      FastPasswordHasher(),
		SessionTTL:  time.Hour,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Hasher == nil {
		factory.Hasher = FastPasswordHasher()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the base logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Services bundles every application service over one engine.
type Services struct {
	Engine    *application.Engine
	Store     persistence.Store
	Ledger    *application.LedgerService
	Exams     *application.ExamService
	Accounts  *application.AccountService
	Auth      *application.AuthService
	Persons   *application.PersonService
	Reports   *application.ReportService
	Policy    *application.PolicyService
	Documents *application.DocumentService
}

// NewServices wires services over doc kept in a fresh memory store.
func (f *ServiceFactory) NewServices(doc domain.Document) *Services {
	return f.NewServicesWithStore(doc, memory.NewWithDocument(doc))
}

// NewServicesWithStore wires services over doc, flushing to store.
func (f *ServiceFactory) NewServicesWithStore(doc domain.Document, store persistence.Store) *Services {
	engine := application.NewEngineWithLogger(doc, store, f.Logger)
	ids := f.IDGenerator.NextFunc()
	accounts := application.NewAccountServiceWithLogger(engine, f.Clock, ids, f.Hasher, f.Logger)
	return &Services{
		Engine:    engine,
		Store:     store,
		Ledger:    application.NewLedgerServiceWithLogger(engine, f.Clock, ids, f.Logger),
		Exams:     application.NewExamServiceWithLogger(engine, f.Clock, ids, f.Logger),
		Accounts:  accounts,
		Auth:      application.NewAuthServiceWithLogger(accounts, nil, ids, f.Clock, f.SessionTTL, f.Logger),
		Persons:   application.NewPersonService(engine, f.Clock, f.Logger),
		Reports:   application.NewReportService(engine, f.Logger),
		Policy:    application.NewPolicyService(engine, f.Logger),
		Documents: application.NewDocumentService(engine, f.Logger),
	}
}
