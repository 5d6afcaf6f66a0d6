package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/intern-ledger/internal/application"
	"github.com/example/intern-ledger/internal/logging"
)

var (
	errBadRequestBody      = errors.New("Formato de requisição inválido.")
	errInvalidDate         = errors.New("Data inválida. Use o formato AAAA-MM-DD.")
	errMissingSessionToken = errors.New("Informe o token de autenticação.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		vErr       *application.ValidationError
		blockedErr *application.BlockedWindowError
		persistErr *application.PersistenceError
	)
	switch {
	case errors.As(err, &persistErr):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "PERSISTENCE_FAILED",
			Message:   "A alteração foi aplicada, mas não pôde ser gravada. Tente novamente mais tarde.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "O recurso solicitado não foi encontrado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "Já existe um registro com este valor.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Usuário ou senha incorretos.",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "Sessão expirada. Faça login novamente.",
		})
	case errors.As(err, &blockedErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode:       "BLOCKED_WINDOW",
			Message:         "Não é possível marcar prova dentro do período bloqueado.",
			EarliestAllowed: blockedErr.EarliestAllowed.String(),
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Os dados informados são inválidos.",
			Errors:  localizeValidationErrors(vErr),
		})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocorreu um erro interno no servidor."})
	}
}

// handleRequestError answers a failed decodeRequest: malformed bodies are 400,
// tag violations go through handleServiceError.
func (r responder) handleRequestError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBadRequestBody) || errors.Is(err, errInvalidDate) {
		r.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	r.handleServiceError(ctx, w, err)
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "O conteúdo da requisição é inválido."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "O recurso solicitado não foi encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Os dados informados são inválidos."
	default:
		return "Ocorreu um erro interno no servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "date is required":
		return "A data é obrigatória."
	case "kind must be credit or debit":
		return "O tipo deve ser credit ou debit."
	case "hours must be a positive number":
		return "As horas devem ser um número positivo."
	case "hours must be a non-zero finite number":
		return "As horas devem ser um número finito diferente de zero."
	case "name is required":
		return "O nome é obrigatório."
	case "username is required", "username is required and must not contain spaces":
		return "O usuário é obrigatório e não pode conter espaços."
	case "password is required":
		return "A senha é obrigatória."
	case "must not be negative":
		return "O valor não pode ser negativo."
	case "cannot delete your own account":
		return "Não é possível excluir a própria conta."
	case "account has no tracked person":
		return "A conta não está vinculada a um estagiário."
	case "id is required":
		return "O identificador é obrigatório."
	case "timestamp is required":
		return "A data e hora são obrigatórias."
	case "exam dates must be unique and ascending":
		return "As datas de prova devem ser únicas e em ordem crescente."
	case "compensated_by and compensated_at must be set together":
		return "compensated_by e compensated_at devem ser informados juntos."
	case "intern account must reference an existing person":
		return "A conta de estagiário deve referenciar uma pessoa existente."
	default:
		for prefix, localized := range map[string]string{
			"duplicate person id":  "Identificador de pessoa duplicado:",
			"duplicate entry id":   "Identificador de lançamento duplicado:",
			"duplicate account id": "Identificador de conta duplicado:",
			"duplicate username":   "Usuário duplicado:",
			"unknown action":       "Ação desconhecida:",
			"unknown role":         "Perfil desconhecido:",
		} {
			if rest, ok := strings.CutPrefix(message, prefix); ok {
				return localized + " " + strings.TrimSpace(rest)
			}
		}
		return message
	}
}

type errorResponse struct {
	ErrorCode       string            `json:"error_code,omitempty"`
	Message         string            `json:"message"`
	Errors          map[string]string `json:"errors,omitempty"`
	EarliestAllowed string            `json:"earliest_allowed,omitempty"`
}
