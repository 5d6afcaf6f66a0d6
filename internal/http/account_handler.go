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

type accountService interface {
	CreateIntern(ctx context.Context, params application.CreateInternParams) (application.AccountView, error)
	CreateAdmin(ctx context.Context, params application.CreateAdminParams) (application.AccountView, error)
	UpdateAccount(ctx context.Context, params application.UpdateAccountParams) (application.AccountView, error)
	DeleteAccount(ctx context.Context, actor domain.Actor, accountID string) error
	ResetPassword(ctx context.Context, params application.ResetPasswordParams) error
	ChangeOwnPassword(ctx context.Context, params application.ChangeOwnPasswordParams) error
	ListAccounts(ctx context.Context, params application.ListAccountsParams) ([]application.AccountView, error)
}

type AccountHandler struct {
	service   accountService
	responder responder
	logger    *slog.Logger
}

func NewAccountHandler(service accountService, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AccountHandler", operation, attrs...)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	query := r.URL.Query().Get("q")
	logger := h.log(r.Context(), "List", "actor_id", actor.ID)

	accounts, err := h.service.ListAccounts(r.Context(), application.ListAccountsParams{Actor: actor, Query: query})
	if err != nil {
		logger.ErrorContext(r.Context(), "account list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(accounts)).InfoContext(r.Context(), "accounts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req createAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "Create", "actor_id", actor.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid account request", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", actor.ID, "role", req.Role)

	var (
		account application.AccountView
		err     error
	)
	if domain.Role(req.Role) == domain.RoleAdmin {
		caps := make([]domain.Capability, 0, len(req.Capabilities))
		for _, c := range req.Capabilities {
			caps = append(caps, domain.Capability(c))
		}
		account, err = h.service.CreateAdmin(r.Context(), application.CreateAdminParams{
			Actor:              actor,
			Username:           req.Username,
			Password:           req.Password,
			Capabilities:       domain.NewCapabilitySet(caps...),
			SelfPasswordChange: req.SelfPasswordChange,
		})
	} else {
		account, err = h.service.CreateIntern(r.Context(), application.CreateInternParams{
			Actor:              actor,
			Username:           req.Username,
			Password:           req.Password,
			Name:               req.Name,
			SelfPasswordChange: req.SelfPasswordChange,
		})
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "account creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", account.ID).InfoContext(r.Context(), "account created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, accountResponse{Account: account})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	accountID := chi.URLParam(r, "accountID")

	var req updateAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "Update", "actor_id", actor.ID, "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid account update", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", actor.ID, "account_id", accountID)

	account, err := h.service.UpdateAccount(r.Context(), application.UpdateAccountParams{
		Actor:              actor,
		AccountID:          accountID,
		Username:           req.Username,
		PersonName:         req.Name,
		SelfPasswordChange: req.SelfPasswordChange,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "account update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, accountResponse{Account: account})
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	accountID := chi.URLParam(r, "accountID")
	logger := h.log(r.Context(), "Delete", "actor_id", actor.ID, "account_id", accountID)

	if err := h.service.DeleteAccount(r.Context(), actor, accountID); err != nil {
		logger.ErrorContext(r.Context(), "account delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	accountID := chi.URLParam(r, "accountID")

	var req resetPasswordRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "ResetPassword", "actor_id", actor.ID, "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid password reset", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "ResetPassword", "actor_id", actor.ID, "account_id", accountID)
	if err := h.service.ResetPassword(r.Context(), application.ResetPasswordParams{
		Actor:       actor,
		AccountID:   accountID,
		NewPassword: req.Password,
	}); err != nil {
		logger.ErrorContext(r.Context(), "password reset failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password reset")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AccountHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeRequest(r, &req); err != nil {
		h.log(r.Context(), "ChangeOwnPassword", "actor_id", actor.ID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid password change", "error", err)
		h.responder.handleRequestError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "ChangeOwnPassword", "actor_id", actor.ID)
	if err := h.service.ChangeOwnPassword(r.Context(), application.ChangeOwnPasswordParams{
		Actor:           actor,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		logger.ErrorContext(r.Context(), "password change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "password changed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createAccountRequest struct {
	Role               string   `json:"role" validate:"required,oneof=intern admin"`
	Username           string   `json:"username" validate:"required,notblank,nospace"`
	Password           string   `json:"password" validate:"required"`
	Name               string   `json:"name" validate:"required_if=Role intern"`
	Capabilities       []string `json:"capabilities" validate:"dive,oneof=create_intern edit_user delete_user reset_password delegate_admins manage_hours"`
	SelfPasswordChange bool     `json:"self_password_change"`
}

type updateAccountRequest struct {
	Username           *string `json:"username" validate:"omitnil,notblank,nospace"`
	Name               *string `json:"name" validate:"omitnil,notblank"`
	SelfPasswordChange *bool   `json:"self_password_change"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type accountResponse struct {
	Account application.AccountView `json:"account"`
}

type listAccountsResponse struct {
	Accounts []application.AccountView `json:"accounts"`
}

type actorDTO struct {
	ID           string               `json:"id"`
	Username     string               `json:"username"`
	Role         domain.Role          `json:"role"`
	Capabilities domain.CapabilitySet `json:"capabilities"`
	PersonID     string               `json:"person_id,omitempty"`
}

func toActorDTO(actor domain.Actor) actorDTO {
	caps := actor.Capabilities
	if caps == nil {
		caps = domain.CapabilitySet{}
	}
	return actorDTO{
		ID:           actor.ID,
		Username:     strings.TrimSpace(actor.DisplayName),
		Role:         actor.Role,
		Capabilities: caps,
		PersonID:     actor.PersonID,
	}
}
