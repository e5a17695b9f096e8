package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/storage"
)

const userColumns = `id, username, email, password, created_at, avatar, refresh_token, confirmed`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password, created_at, avatar, refresh_token, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		nullString(user.Avatar),
		nullString(user.RefreshToken),
		user.Confirmed,
	)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	var avatar, refreshToken sql.NullString

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&avatar,
		&refreshToken,
		&user.Confirmed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Avatar = stringPtr(avatar)
	user.RefreshToken = stringPtr(refreshToken)
	return user, nil
}

func (s *Storage) execUser(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// ConfirmEmail marks user email as confirmed
func (s *Storage) ConfirmEmail(ctx context.Context, email string) error {
	return s.execUser(ctx, `UPDATE users SET confirmed = TRUE WHERE email = $1`, email)
}

// UpdateRefreshToken stores or clears the refresh token
func (s *Storage) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	return s.execUser(ctx, `UPDATE users SET refresh_token = $1 WHERE id = $2`, nullString(token), userID)
}

// UpdateAvatar sets avatar URL and returns the updated user
func (s *Storage) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	query := `UPDATE users SET avatar = $1 WHERE email = $2 RETURNING ` + userColumns
	return s.getUser(ctx, query, url, email)
}

// UpdatePassword replaces password hash
func (s *Storage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return s.execUser(ctx, `UPDATE users SET password = $1 WHERE email = $2`, passwordHash, email)
}
