package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/service"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/server/tokens"
	"github.com/iudanet/contactbook/internal/validation"
	"github.com/iudanet/contactbook/pkg/api"
)

// mockAuthService is a mock implementation of AuthService for testing
type mockAuthService struct {
	signup         func(ctx context.Context, email, username, password string) (*models.User, error)
	login          func(ctx context.Context, email, password string) (*service.TokenPair, error)
	refresh        func(ctx context.Context, token string) (*service.TokenPair, error)
	confirmEmail   func(ctx context.Context, token string) (bool, error)
	requestEmail   func(ctx context.Context, email string) (bool, error)
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, token, password string) error
}

func (m *mockAuthService) Signup(ctx context.Context, email, username, password string) (*models.User, error) {
	return m.signup(ctx, email, username, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, error) {
	return m.login(ctx, email, password)
}

func (m *mockAuthService) Refresh(ctx context.Context, token string) (*service.TokenPair, error) {
	return m.refresh(ctx, token)
}

func (m *mockAuthService) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	return m.confirmEmail(ctx, token)
}

func (m *mockAuthService) RequestEmail(ctx context.Context, email string) (bool, error) {
	return m.requestEmail(ctx, email)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotPassword(ctx, email)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	return m.resetPassword(ctx, token, password)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	var got []string
	handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
		signup: func(_ context.Context, email, username, password string) (*models.User, error) {
			got = []string{email, username, password}
			u := testUser()
			u.Confirmed = false
			return u, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", jsonBody(t, api.SignupRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	}))
	w := httptest.NewRecorder()
	handler.Signup(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"alice@example.com", "alice", "secret123"}, got)

	var resp api.SignupResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.False(t, resp.User.Confirmed)
	assert.Equal(t, msgSignedUp, resp.Detail)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		body       string
		wantDetail string
		wantStatus int
	}{
		{
			name:       "invalid json",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
			wantDetail: "invalid request body",
		},
		{
			name:       "duplicate account",
			body:       `{"email":"a@example.com","username":"alice","password":"secret123"}`,
			err:        storage.ErrUserAlreadyExists,
			wantStatus: http.StatusConflict,
			wantDetail: DetailAccountExists,
		},
		{
			name:       "validation",
			body:       `{"email":"a@example.com","username":"alice","password":"1"}`,
			err:        &validation.Error{Field: "password", Message: "too short"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "password: too short",
		},
		{
			name:       "storage failure",
			body:       `{"email":"a@example.com","username":"alice","password":"secret123"}`,
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: DetailInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
				signup: func(context.Context, string, string, string) (*models.User, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Signup(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func loginRequest(email, password string) *http.Request {
	form := url.Values{}
	if email != "" {
		form.Set("username", email)
	}
	if password != "" {
		form.Set("password", password)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
		login: func(_ context.Context, email, password string) (*service.TokenPair, error) {
			assert.Equal(t, "alice@example.com", email)
			assert.Equal(t, "secret123", password)
			return &service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	})

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest("alice@example.com", "secret123"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, api.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer"}, resp)
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		err        error
		wantDetail string
	}{
		{service.ErrInvalidEmail, DetailInvalidEmail},
		{service.ErrEmailNotConfirmed, DetailEmailNotConfirmed},
		{service.ErrInvalidPassword, DetailInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.wantDetail, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
				login: func(context.Context, string, string) (*service.TokenPair, error) {
					return nil, tt.err
				},
			})

			w := httptest.NewRecorder()
			handler.Login(w, loginRequest("alice@example.com", "secret123"))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), &mockAuthService{})

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest("alice@example.com", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		header     string
		wantDetail string
		wantStatus int
	}{
		{name: "success", header: "Bearer old-refresh", wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantDetail: DetailNotAuthenticated},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantDetail: DetailNotAuthenticated},
		{
			name:       "invalid token",
			header:     "Bearer bad",
			err:        fmt.Errorf("%w: expired", tokens.ErrInvalidToken),
			wantStatus: http.StatusUnauthorized,
			wantDetail: DetailBadCredentials,
		},
		{
			name:       "mismatch",
			header:     "Bearer stale",
			err:        service.ErrRefreshTokenMismatch,
			wantStatus: http.StatusForbidden,
			wantDetail: DetailInvalidRefresh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
				refresh: func(_ context.Context, token string) (*service.TokenPair, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					assert.Equal(t, "old-refresh", token)
					return &service.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh_token", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.RefreshToken(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp api.TokenResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "r2", resp.RefreshToken)
				return
			}
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func TestAuthHandler_ConfirmedEmail(t *testing.T) {
	tests := []struct {
		err        error
		name       string
		wantMsg    string
		already    bool
		wantStatus int
	}{
		{name: "confirmed", wantStatus: http.StatusOK, wantMsg: msgEmailConfirmed},
		{name: "already confirmed", already: true, wantStatus: http.StatusOK, wantMsg: msgAlreadyConfirmed},
		{
			name:       "bad token",
			err:        fmt.Errorf("%w: %w", service.ErrVerification, tokens.ErrInvalidToken),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
				confirmEmail: func(_ context.Context, token string) (bool, error) {
					assert.Equal(t, "tok", token)
					return tt.already, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/confirmed_email/tok", nil)
			req.SetPathValue("token", "tok")
			w := httptest.NewRecorder()
			handler.ConfirmedEmail(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.err != nil {
				// ошибка подтверждения не должна превращаться в 401
				assert.Equal(t, DetailVerification, decodeDetail(t, w))
				return
			}
			var resp api.MessageResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestAuthHandler_RequestEmail(t *testing.T) {
	for _, already := range []bool{false, true} {
		handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
			requestEmail: func(context.Context, string) (bool, error) { return already, nil },
		})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/request_email",
			jsonBody(t, api.EmailRequest{Email: "alice@example.com"}))
		w := httptest.NewRecorder()
		handler.RequestEmail(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.MessageResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		if already {
			assert.Equal(t, msgAlreadyConfirmed, resp.Message)
		} else {
			assert.Equal(t, msgCheckEmail, resp.Message)
		}
	}

	handler := NewAuthHandler(setupTestLogger(), &mockAuthService{})
	w := httptest.NewRecorder()
	handler.RequestEmail(w, httptest.NewRequest(http.MethodPost, "/api/auth/request_email", strings.NewReader("{}")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ForgotAndResetPassword(t *testing.T) {
	var forgot string
	handler := NewAuthHandler(setupTestLogger(), &mockAuthService{
		forgotPassword: func(_ context.Context, email string) error {
			forgot = email
			return nil
		},
		resetPassword: func(_ context.Context, token, password string) error {
			if token != "good" {
				return fmt.Errorf("%w: %w", service.ErrInvalidResetToken, tokens.ErrInvalidToken)
			}
			return nil
		},
	})

	w := httptest.NewRecorder()
	handler.ForgotPassword(w, httptest.NewRequest(http.MethodPost, "/api/auth/forgot_password",
		jsonBody(t, api.EmailRequest{Email: "alice@example.com"})))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", forgot)

	w = httptest.NewRecorder()
	handler.ResetPassword(w, httptest.NewRequest(http.MethodPost, "/api/auth/reset_password",
		jsonBody(t, api.ResetPasswordRequest{Token: "good", NewPassword: "another123"})))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ResetPassword(w, httptest.NewRequest(http.MethodPost, "/api/auth/reset_password",
		jsonBody(t, api.ResetPasswordRequest{Token: "bad", NewPassword: "another123"})))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, DetailInvalidReset, decodeDetail(t, w))
}
