package auth

import (
	"context"

	"github.com/iudanet/contactbook/internal/client/storage"
)

//go:generate moq -out service_mock.go . Service

// Service управляет сессией CLI: вход, выход и вызовы API с автоматическим
// обновлением access token
type Service interface {
	// Login выполняет аутентификацию и сохраняет токены
	Login(ctx context.Context, email, password string) (*storage.AuthData, error)

	// Logout удаляет локальную сессию
	Logout(ctx context.Context) error

	// Current возвращает сохраненную сессию или ErrNotLoggedIn
	Current(ctx context.Context) (*storage.AuthData, error)

	// IsAuthenticated сообщает, есть ли действующая сессия
	IsAuthenticated(ctx context.Context) (bool, error)

	// WithToken вызывает fn с access token. Если сервер отклонил токен,
	// сессия обновляется через refresh token и fn вызывается повторно.
	WithToken(ctx context.Context, fn func(token string) error) error
}
