package storage

import (
	"context"
)

// AuthStorage хранит сессию CLI между запусками
type AuthStorage interface {
	// SaveAuth сохраняет данные сессии, заменяя предыдущие
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth возвращает сохраненную сессию
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth удаляет сессию (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated сообщает, есть ли сессия с действующим refresh token
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData сессия пользователя на клиенте
type AuthData struct {
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt срок действия refresh token (unix), 0 если неизвестен
	ExpiresAt int64 `json:"expires_at"`
}
