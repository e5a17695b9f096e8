package sqlite

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
	query := `
		INSERT INTO users (id, username, email, password, created_at, avatar, refresh_token, confirmed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.UTC(),
		nullString(user.Avatar),
		nullString(user.RefreshToken),
		user.Confirmed,
	)
	if err != nil {
		// email или id уже заняты
		if isUniqueViolation(err, "users.") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return s.getUser(ctx, query, email)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return s.getUser(ctx, query, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var avatar, refreshToken sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
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
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Avatar = stringPtr(avatar)
	user.RefreshToken = stringPtr(refreshToken)

	return user, nil
}

// ConfirmEmail marks user email as confirmed
func (s *Storage) ConfirmEmail(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET confirmed = 1 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return checkUserAffected(result)
}

// UpdateRefreshToken stores or clears the refresh token
func (s *Storage) UpdateRefreshToken(ctx context.Context, userID string, token *string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = ? WHERE id = ?`,
		nullString(token), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return checkUserAffected(result)
}

// UpdateAvatar sets avatar URL
func (s *Storage) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET avatar = ? WHERE email = ?`, url, email)
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	if err := checkUserAffected(result); err != nil {
		return nil, err
	}
	return s.GetUserByEmail(ctx, email)
}

// UpdatePassword replaces password hash
func (s *Storage) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE email = ?`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkUserAffected(result)
}

func checkUserAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
