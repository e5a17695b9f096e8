package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/service"
	"github.com/iudanet/contactbook/pkg/api"
)

const (
	msgSignedUp          = "User successfully created. Check your email for confirmation."
	msgEmailConfirmed    = "Email confirmed"
	msgAlreadyConfirmed  = "Your email is already confirmed"
	msgCheckEmail        = "Check your email for confirmation."
	msgResetRequested    = "If the account exists, a password reset email has been sent."
	msgPasswordResetDone = "Password has been reset"
)

// AuthService сценарии аутентификации, используемые AuthHandler
type AuthService interface {
	Signup(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	ConfirmEmail(ctx context.Context, token string) (bool, error)
	RequestEmail(ctx context.Context, email string) (bool, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	auth AuthService
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, auth AuthService) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		auth:      auth,
	}
}

// Signup обрабатывает POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Signup(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		h.handleError(ctx, w, err, "signup")
		return
	}

	h.sendJSON(w, api.SignupResponse{User: toAPIUser(user), Detail: msgSignedUp}, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
// Форма OAuth2 password flow: username (email) и password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.sendError(w, "invalid form body", http.StatusBadRequest)
		return
	}

	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		h.sendError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	pair, err := h.auth.Login(ctx, email, password)
	if err != nil {
		h.handleError(ctx, w, err, "login")
		return
	}

	h.sendJSON(w, toTokenResponse(pair), http.StatusOK)
}

// RefreshToken обрабатывает GET /api/auth/refresh_token
// Refresh token передается в заголовке Authorization: Bearer
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := BearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.sendError(w, DetailNotAuthenticated, http.StatusUnauthorized)
		return
	}

	pair, err := h.auth.Refresh(ctx, token)
	if err != nil {
		h.handleError(ctx, w, err, "refresh_token")
		return
	}

	h.sendJSON(w, toTokenResponse(pair), http.StatusOK)
}

// ConfirmedEmail обрабатывает GET /api/auth/confirmed_email/{token}
func (h *AuthHandler) ConfirmedEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	already, err := h.auth.ConfirmEmail(ctx, r.PathValue("token"))
	if err != nil {
		h.handleError(ctx, w, err, "confirmed_email")
		return
	}

	msg := msgEmailConfirmed
	if already {
		msg = msgAlreadyConfirmed
	}
	h.sendJSON(w, api.MessageResponse{Message: msg}, http.StatusOK)
}

// RequestEmail обрабатывает POST /api/auth/request_email
func (h *AuthHandler) RequestEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.sendError(w, "email is required", http.StatusBadRequest)
		return
	}

	already, err := h.auth.RequestEmail(ctx, req.Email)
	if err != nil {
		h.handleError(ctx, w, err, "request_email")
		return
	}

	msg := msgCheckEmail
	if already {
		msg = msgAlreadyConfirmed
	}
	h.sendJSON(w, api.MessageResponse{Message: msg}, http.StatusOK)
}

// ForgotPassword обрабатывает POST /api/auth/forgot_password
// Ответ не зависит от того, существует ли пользователь
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		h.sendError(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		h.handleError(ctx, w, err, "forgot_password")
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: msgResetRequested}, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/auth/reset_password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		h.handleError(ctx, w, err, "reset_password")
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: msgPasswordResetDone}, http.StatusOK)
}

func toTokenResponse(pair *service.TokenPair) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    api.TokenTypeBearer,
	}
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		Confirmed: u.Confirmed,
	}
}
