package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/contactbook/internal/server/service"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/server/tokens"
	"github.com/iudanet/contactbook/internal/validation"
	"github.com/iudanet/contactbook/pkg/api"
)

// Тексты ошибок, которые видит клиент
const (
	DetailAccountExists     = "Account already exists"
	DetailInvalidEmail      = "Invalid email"
	DetailEmailNotConfirmed = "Email not confirmed"
	DetailInvalidPassword   = "Invalid password"
	DetailInvalidRefresh    = "Invalid refresh token"
	DetailBadCredentials    = "Could not validate credentials"
	DetailNotAuthenticated  = "Not authenticated"
	DetailVerification      = "Verification error"
	DetailInvalidReset      = "Invalid or expired reset token"
	DetailContactNotFound   = "Contact not found"
	DetailDuplicateEmail    = "Contact with the mentioned email already exists."
	DetailDuplicatePhone    = "Contact with the mentioned contact number already exists."
	DetailSearchParam       = "You must provide at least one parameter"
	DetailInternal          = "internal server error"
)

// errorMapping сопоставление доменных ошибок с HTTP ответами.
// Порядок важен: обертки проверяются раньше вложенных ошибок.
var errorMapping = []struct {
	err    error
	detail string
	status int
}{
	{storage.ErrUserAlreadyExists, DetailAccountExists, http.StatusConflict},
	{storage.ErrContactNotFound, DetailContactNotFound, http.StatusNotFound},
	{storage.ErrDuplicateContactEmail, DetailDuplicateEmail, http.StatusConflict},
	{storage.ErrDuplicateContactPhone, DetailDuplicatePhone, http.StatusConflict},
	{service.ErrInvalidEmail, DetailInvalidEmail, http.StatusUnauthorized},
	{service.ErrEmailNotConfirmed, DetailEmailNotConfirmed, http.StatusUnauthorized},
	{service.ErrInvalidPassword, DetailInvalidPassword, http.StatusUnauthorized},
	{service.ErrRefreshTokenMismatch, DetailInvalidRefresh, http.StatusForbidden},
	{service.ErrVerification, DetailVerification, http.StatusBadRequest},
	{service.ErrInvalidResetToken, DetailInvalidReset, http.StatusBadRequest},
	{service.ErrSearchParamRequired, DetailSearchParam, http.StatusBadRequest},
	{tokens.ErrInvalidToken, DetailBadCredentials, http.StatusUnauthorized},
}

// responder общие методы записи ответов для всех handler'ов
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	WriteJSON(h.logger, w, data, statusCode)
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, detail string, statusCode int) {
	WriteError(h.logger, w, detail, statusCode)
}

// handleError переводит ошибку сервиса в HTTP ответ.
// Неизвестные ошибки логируются и отдаются как 500 без деталей.
func (h responder) handleError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		h.logger.DebugContext(ctx, "validation failed", slog.String("op", op), slog.Any("error", err))
		h.sendError(w, vErr.Field+": "+vErr.Message, http.StatusBadRequest)
		return
	}

	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			h.logger.DebugContext(ctx, "request rejected",
				slog.String("op", op),
				slog.Int("status", m.status),
				slog.Any("error", err),
			)
			h.sendError(w, m.detail, m.status)
			return
		}
	}

	h.logger.ErrorContext(ctx, "request failed", slog.String("op", op), slog.Any("error", err))
	h.sendError(w, DetailInternal, http.StatusInternalServerError)
}

// WriteJSON пишет data как JSON с указанным статусом
func WriteJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError пишет {"detail": ...} с указанным статусом
func WriteError(logger *slog.Logger, w http.ResponseWriter, detail string, statusCode int) {
	WriteJSON(logger, w, api.ErrorResponse{Detail: detail}, statusCode)
}
