package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/contactbook/internal/client/api"
	"github.com/iudanet/contactbook/internal/client/storage"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

var (
	// ErrNotLoggedIn локальная сессия отсутствует
	ErrNotLoggedIn = errors.New("not authenticated, run 'contacts login' first")

	// ErrSessionExpired refresh token отклонен сервером
	ErrSessionExpired = errors.New("session expired, run 'contacts login' again")
)

// TokenAPI методы сервера, выдающие токены
type TokenAPI interface {
	Login(ctx context.Context, email, password string) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
}

// Session реализует Service поверх API и локального хранилища
type Session struct {
	apiClient TokenAPI
	store     storage.AuthStorage
	logger    *slog.Logger
}

var _ Service = (*Session)(nil)

// NewSession создает сервис сессии
func NewSession(apiClient TokenAPI, store storage.AuthStorage, logger *slog.Logger) *Session {
	return &Session{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
	}
}

// Login выполняет аутентификацию и сохраняет токены
func (s *Session) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	tokens, err := s.apiClient.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	auth := &storage.AuthData{
		Email:        email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokenExpiry(tokens.RefreshToken),
	}
	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}
	return auth, nil
}

// Logout удаляет локальную сессию
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.DeleteAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return ErrNotLoggedIn
	}
	return err
}

// Current возвращает сохраненную сессию
func (s *Session) Current(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return auth, nil
}

// IsAuthenticated сообщает, есть ли действующая сессия
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.store.IsAuthenticated(ctx)
}

// WithToken вызывает fn с access token, при 401 обновляет токены один раз
func (s *Session) WithToken(ctx context.Context, fn func(token string) error) error {
	auth, err := s.Current(ctx)
	if err != nil {
		return err
	}

	err = fn(auth.AccessToken)
	if !api.IsUnauthorized(err) {
		return err
	}

	s.logger.Debug("access token rejected, refreshing", "email", auth.Email)
	auth, err = s.refresh(ctx, auth)
	if err != nil {
		return err
	}
	return fn(auth.AccessToken)
}

func (s *Session) refresh(ctx context.Context, auth *storage.AuthData) (*storage.AuthData, error) {
	tokens, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) || api.IsForbidden(err) {
			// refresh token отозван или истек, сессия бесполезна
			if delErr := s.store.DeleteAuth(ctx); delErr != nil && !errors.Is(delErr, storage.ErrAuthNotFound) {
				s.logger.Warn("failed to drop stale session", "error", delErr)
			}
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	updated := &storage.AuthData{
		Email:        auth.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokenExpiry(tokens.RefreshToken),
	}
	if err := s.store.SaveAuth(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}
	return updated, nil
}

// tokenExpiry читает exp из JWT без проверки подписи, 0 если не удалось.
// Подпись проверяет сервер, клиенту срок нужен только для status.
func tokenExpiry(token string) int64 {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0
	}
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Unix()
}
