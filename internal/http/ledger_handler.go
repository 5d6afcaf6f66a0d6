package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

type ledgerService interface {
	AddEntry(ctx context.Context, params application.AddEntryParams) (domain.HourEntry, error)
	EditEntry(ctx context.Context, params application.EditEntryParams) (domain.HourEntry, error)
	DeleteEntry(ctx context.Context, params application.DeleteEntryParams) error
	SetCompensated(ctx context.Context, params application.SetCompensatedParams) (domain.HourEntry, error)
	NetBalance(ctx context.Context, actor domain.Actor, personID string) (ledger.Balance, error)
	ListEntries(ctx context.Context, actor domain.Actor, personID string) ([]domain.HourEntry, error)
	ListAudit(ctx context.Context, actor domain.Actor, personID string) ([]domain.AuditEvent, error)
}

type LedgerHandler struct {
	service   ledgerService
	responder responder
	logger    *slog.Logger
}

func NewLedgerHandler(service ledgerService, logger *slog.Logger) *LedgerHandler {
	base := defaultLogger(logger)
	return &LedgerHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LedgerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LedgerHandler", operation, attrs...)
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	logger := h.log(r.Context(), "ListEntries", "actor_id", actor.ID, "person_id", personID)

	entries, err := h.service.ListEntries(r.Context(), actor, personID)
	if err != nil {
		logger.ErrorContext(r.Context(), "entry list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEntriesResponse{Entries: entries})
}

func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")

	var req entryRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "CreateEntry", "actor_id", actor.ID, "person_id", personID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid entry request", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "CreateEntry", "actor_id", actor.ID, "person_id", personID)
	entry, err := h.service.AddEntry(r.Context(), application.AddEntryParams{
		Actor:    actor,
		PersonID: personID,
		Input:    input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "entry creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("entry_id", entry.ID).InfoContext(r.Context(), "entry created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, entryResponse{Entry: entry})
}

func (h *LedgerHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	entryID := chi.URLParam(r, "entryID")

	var req entryRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "UpdateEntry", "actor_id", actor.ID, "person_id", personID, "entry_id", entryID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid entry update", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "UpdateEntry", "actor_id", actor.ID, "person_id", personID, "entry_id", entryID)
	entry, err := h.service.EditEntry(r.Context(), application.EditEntryParams{
		Actor:       actor,
		PersonID:    personID,
		EntryID:     entryID,
		Input:       input,
		Compensated: req.Compensated,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "entry update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "entry updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entryResponse{Entry: entry})
}

func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	entryID := chi.URLParam(r, "entryID")
	logger := h.log(r.Context(), "DeleteEntry", "actor_id", actor.ID, "person_id", personID, "entry_id", entryID)

	if err := h.service.DeleteEntry(r.Context(), application.DeleteEntryParams{
		Actor:    actor,
		PersonID: personID,
		EntryID:  entryID,
	}); err != nil {
		logger.ErrorContext(r.Context(), "entry delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "entry deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *LedgerHandler) SetCompensation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")
	entryID := chi.URLParam(r, "entryID")

	var req compensationRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "SetCompensation", "actor_id", actor.ID, "entry_id", entryID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid compensation request", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SetCompensation", "actor_id", actor.ID, "person_id", personID, "entry_id", entryID, "compensated", *req.Compensated)
	entry, err := h.service.SetCompensated(r.Context(), application.SetCompensatedParams{
		Actor:       actor,
		PersonID:    personID,
		EntryID:     entryID,
		Compensated: *req.Compensated,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "compensation toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "compensation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entryResponse{Entry: entry})
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")

	balance, err := h.service.NetBalance(r.Context(), actor, personID)
	if err != nil {
		h.log(r.Context(), "Balance", "actor_id", actor.ID, "person_id", personID).
			ErrorContext(r.Context(), "balance lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, balanceResponse{Balance: balance})
}

func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	personID := chi.URLParam(r, "personID")

	events, err := h.service.ListAudit(r.Context(), actor, personID)
	if err != nil {
		h.log(r.Context(), "Audit", "actor_id", actor.ID, "person_id", personID).
			ErrorContext(r.Context(), "audit listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, auditResponse{Events: events})
}

type entryRequest struct {
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Kind        string  `json:"kind" validate:"required,oneof=credit debit"`
	Hours       float64 `json:"hours" validate:"gt=0"`
	Reason      string  `json:"reason" validate:"max=500"`
	Compensated bool    `json:"compensated"`
}

func (r entryRequest) toInput() (application.EntryInput, error) {
	day, err := domain.ParseDate(r.Date)
	if err != nil {
		return application.EntryInput{}, errInvalidDate
	}
	kind, _ := domain.ParseEntryKind(r.Kind)
	return application.EntryInput{
		Date:   day,
		Kind:   kind,
		Hours:  r.Hours,
		Reason: strings.TrimSpace(r.Reason),
	}, nil
}

type compensationRequest struct {
	Compensated *bool `json:"compensated" validate:"required"`
}

type entryResponse struct {
	Entry domain.HourEntry `json:"entry"`
}

type listEntriesResponse struct {
	Entries []domain.HourEntry `json:"entries"`
}

type balanceResponse struct {
	Balance ledger.Balance `json:"balance"`
}

type auditResponse struct {
	Events []domain.AuditEvent `json:"events"`
}
