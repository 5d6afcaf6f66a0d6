package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
)

type personService interface {
	ListPersons(ctx context.Context, actor domain.Actor) ([]application.PersonSummary, error)
	PersonsWithExamOn(ctx context.Context, actor domain.Actor, day domain.Date) ([]application.PersonSummary, error)
	SearchPersons(ctx context.Context, actor domain.Actor, query string) ([]application.PersonSummary, error)
	GetPerson(ctx context.Context, actor domain.Actor, personID string) (domain.Person, error)
	ExportPerson(ctx context.Context, actor domain.Actor, personID string) (application.PersonExport, error)
}

type PersonHandler struct {
	service   personService
	responder responder
	logger    *slog.Logger
}

func NewPersonHandler(service personService, logger *slog.Logger) *PersonHandler {
	base := defaultLogger(logger)
	return &PersonHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PersonHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PersonHandler", operation, attrs...)
}

// List serves GET /persons. exam_date narrows the list to persons with an exam
// that day; q runs a name search. Without either every person is returned.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	values := r.URL.Query()
	examDate := strings.TrimSpace(values.Get("exam_date"))
	query := values.Get("q")
	logger := h.log(r.Context(), "List", "actor_id", actor.ID, "exam_date", examDate, "query", query)

	var (
		persons []application.PersonSummary
		err     error
	)
	switch {
	case examDate != "":
		day, parseErr := domain.ParseDate(examDate)
		if parseErr != nil {
			logger.ErrorContext(r.Context(), "invalid exam date filter", "error", parseErr, "error_kind", "bad_request")
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		persons, err = h.service.PersonsWithExamOn(r.Context(), actor, day)
	case strings.TrimSpace(query) != "":
		persons, err = h.service.SearchPersons(r.Context(), actor, query)
	default:
		persons, err = h.service.ListPersons(r.Context(), actor)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "person list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(persons)).InfoContext(r.Context(), "persons listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPersonsResponse{Persons: persons})
}

func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	logger := h.log(r.Context(), "Get", "actor_id", actor.ID, "person_id", personID)

	person, err := h.service.GetPerson(r.Context(), actor, personID)
	if err != nil {
		logger.ErrorContext(r.Context(), "person lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: person})
}

func (h *PersonHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	logger := h.log(r.Context(), "Export", "actor_id", actor.ID, "person_id", personID)

	export, err := h.service.ExportPerson(r.Context(), actor, personID)
	if err != nil {
		logger.ErrorContext(r.Context(), "person export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+personID+`.json"`)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, export)
}

type listPersonsResponse struct {
	Persons []application.PersonSummary `json:"persons"`
}

type personResponse struct {
	Person domain.Person `json:"person"`
}
