package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/ledger"
)

type policyService interface {
	GetPolicy(ctx context.Context) domain.GlobalPolicy
	SetBlockWindowDays(ctx context.Context, actor domain.Actor, days int) (domain.GlobalPolicy, error)
}

type reportService interface {
	Summarize(ctx context.Context, actor domain.Actor) (ledger.Summary, error)
}

type documentService interface {
	Export(ctx context.Context, actor domain.Actor) (domain.Document, error)
	Import(ctx context.Context, actor domain.Actor, doc domain.Document) error
}

// AdminHandler serves the process-wide resources: the policy, the balance
// report and the whole document.
type AdminHandler struct {
	policy    policyService
	reports   reportService
	documents documentService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(policy policyService, reports reportService, documents documentService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{
		policy:    policy,
		reports:   reports,
		documents: documents,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

func (h *AdminHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.policy == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, policyResponse{Policy: h.policy.GetPolicy(r.Context())})
}

func (h *AdminHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.policy == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req policyRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "UpdatePolicy", "actor_id", actor.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid policy request", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "UpdatePolicy", "actor_id", actor.ID, "block_window_days", *req.BlockWindowDays)
	policy, err := h.policy.SetBlockWindowDays(r.Context(), actor, *req.BlockWindowDays)
	if err != nil {
		logger.ErrorContext(r.Context(), "policy update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "policy updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, policyResponse{Policy: policy})
}

func (h *AdminHandler) Balances(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.reports == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	summary, err := h.reports.Summarize(r.Context(), actor)
	if err != nil {
		h.log(r.Context(), "Balances", "actor_id", actor.ID).
			ErrorContext(r.Context(), "report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, summary)
}

func (h *AdminHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.documents == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	doc, err := h.documents.Export(r.Context(), actor)
	if err != nil {
		h.log(r.Context(), "ExportDocument", "actor_id", actor.ID).
			ErrorContext(r.Context(), "document export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="ledger.json"`)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, doc)
}

func (h *AdminHandler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.documents == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var doc domain.Document
	if err := decodeRequest(r, &doc); err != nil {
		h.log(r.Context(), "ImportDocument", "actor_id", actor.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid document body", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "ImportDocument", "actor_id", actor.ID, "persons", len(doc.Persons), "accounts", len(doc.Accounts))
	if err := h.documents.Import(r.Context(), actor, doc); err != nil {
		logger.ErrorContext(r.Context(), "document import failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "document imported")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type policyRequest struct {
	BlockWindowDays *int `json:"block_window_days" validate:"required,gte=0"`
}

type policyResponse struct {
	Policy domain.GlobalPolicy `json:"policy"`
}
