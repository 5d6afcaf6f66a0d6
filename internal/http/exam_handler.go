package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
)

type examService interface {
	AddExamDate(ctx context.Context, params application.ExamDateParams) ([]domain.Date, error)
	RemoveExamDate(ctx context.Context, params application.ExamDateParams) ([]domain.Date, error)
	ListExamDates(ctx context.Context, actor domain.Actor, personID string) ([]domain.Date, error)
	EarliestSelfServiceDate() domain.Date
}

type ExamHandler struct {
	service   examService
	responder responder
	logger    *slog.Logger
}

func NewExamHandler(service examService, logger *slog.Logger) *ExamHandler {
	base := defaultLogger(logger)
	return &ExamHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ExamHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ExamHandler", operation, attrs...)
}

func (h *ExamHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")

	dates, err := h.service.ListExamDates(r.Context(), actor, personID)
	if err != nil {
		h.log(r.Context(), "List", "actor_id", actor.ID, "person_id", personID).
			ErrorContext(r.Context(), "exam date listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.response(dates))
}

func (h *ExamHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "Add")
}

func (h *ExamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, "Remove")
}

func (h *ExamHandler) change(w http.ResponseWriter, r *http.Request, operation string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	rawDate := chi.URLParam(r, "date")
	logger := h.log(r.Context(), operation, "actor_id", actor.ID, "person_id", personID, "date", rawDate)

	day, err := domain.ParseDate(rawDate)
	if err != nil {
		logger.ErrorContext(r.Context(), "invalid exam date", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	params := application.ExamDateParams{Actor: actor, PersonID: personID, Date: day}
	var dates []domain.Date
	if operation == "Add" {
		dates, err = h.service.AddExamDate(r.Context(), params)
	} else {
		dates, err = h.service.RemoveExamDate(r.Context(), params)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "exam date change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "exam dates changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.response(dates))
}

func (h *ExamHandler) response(dates []domain.Date) examDatesResponse {
	if dates == nil {
		dates = []domain.Date{}
	}
	return examDatesResponse{
		ExamDates:               dates,
		EarliestSelfServiceDate: h.service.EarliestSelfServiceDate(),
	}
}

type examDatesResponse struct {
	ExamDates               []domain.Date `json:"exam_dates"`
	EarliestSelfServiceDate domain.Date   `json:"earliest_self_service_date"`
}
