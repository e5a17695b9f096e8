package storage

import (
	"context"

	"github.com/iudanet/contactbook/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email is already registered
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// ConfirmEmail marks user email as confirmed. Idempotent.
	// Returns ErrUserNotFound if user doesn't exist
	ConfirmEmail(ctx context.Context, email string) error

	// UpdateRefreshToken stores the current refresh token, nil clears it
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error

	// UpdateAvatar sets avatar URL and returns the updated user
	UpdateAvatar(ctx context.Context, email, url string) (*models.User, error)

	// UpdatePassword replaces password hash
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}
