package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Accounts *AccountHandler
	Persons  *PersonHandler
	Ledger   *LedgerHandler
	Exams    *ExamHandler
	Admin    *AdminHandler
	Sessions SessionResolver
	Logger   *slog.Logger
	// Middleware runs after the request id, recovery and logging middleware.
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(logger))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Auth != nil {
		r.Post("/sessions", cfg.Auth.CreateSession)
		r.Delete("/sessions/current", cfg.Auth.DeleteCurrentSession)
	}

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(RequireSession(cfg.Sessions, logger))
		}

		if cfg.Admin != nil {
			r.Get("/policy", cfg.Admin.GetPolicy)
			r.Put("/policy", cfg.Admin.UpdatePolicy)
			r.Get("/reports/balances", cfg.Admin.Balances)
			r.Get("/document", cfg.Admin.ExportDocument)
			r.Put("/document", cfg.Admin.ImportDocument)
		}

		if cfg.Accounts != nil {
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", cfg.Accounts.List)
				r.Post("/", cfg.Accounts.Create)
				r.Route("/{accountID}", func(r chi.Router) {
					r.Put("/", cfg.Accounts.Update)
					r.Delete("/", cfg.Accounts.Delete)
					r.Put("/password", cfg.Accounts.ResetPassword)
				})
			})
			r.Put("/me/password", cfg.Accounts.ChangeOwnPassword)
		}

		r.Route("/persons", func(r chi.Router) {
			if cfg.Persons != nil {
				r.Get("/", cfg.Persons.List)
			}
			r.Route("/{personID}", func(r chi.Router) {
				if cfg.Persons != nil {
					r.Get("/", cfg.Persons.Get)
					r.Get("/export", cfg.Persons.Export)
				}
				if cfg.Ledger != nil {
					r.Get("/balance", cfg.Ledger.Balance)
					r.Get("/audit", cfg.Ledger.Audit)
					r.Get("/entries", cfg.Ledger.ListEntries)
					r.Post("/entries", cfg.Ledger.CreateEntry)
					r.Put("/entries/{entryID}", cfg.Ledger.UpdateEntry)
					r.Delete("/entries/{entryID}", cfg.Ledger.DeleteEntry)
					r.Put("/entries/{entryID}/compensation", cfg.Ledger.SetCompensation)
				}
				if cfg.Exams != nil {
					r.Get("/exam-dates", cfg.Exams.List)
					r.Put("/exam-dates/{date}", cfg.Exams.Add)
					r.Delete("/exam-dates/{date}", cfg.Exams.Remove)
				}
			})
		})
	})

	return r
}
