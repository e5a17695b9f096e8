package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/contactbook/internal/crypto"
	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/avatar"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/server/tokens"
	"github.com/iudanet/contactbook/internal/validation"
)

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) error
}

// TokenService выпускает и проверяет JWT
type TokenService interface {
	IssueAccessToken(subject string) (string, error)
	IssueRefreshToken(subject string) (string, error)
	IssueConfirmationToken(subject string) (string, error)
	IssueResetToken(subject, passwordHash string) (string, error)
	Verify(token string, expected tokens.Type) (string, error)
	VerifyResetToken(token string, passwordHash func(subject string) (string, error)) (string, error)
}

// Notifier отправляет письма без ожидания доставки
type Notifier interface {
	SendConfirmation(email, username, token string) error
	SendPasswordReset(email, username, token string) error
}

// TokenPair пара токенов, выдаваемая при входе и обновлении
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService реализует регистрацию, вход и жизненный цикл токенов
type AuthService struct {
	users    storage.UserStorage
	hasher   PasswordHasher
	tokens   TokenService
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService создает AuthService
func NewAuthService(
	users storage.UserStorage,
	hasher PasswordHasher,
	tokenService TokenService,
	notifier Notifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokenService,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Signup регистрирует пользователя и отправляет письмо подтверждения.
// Ошибка отправки письма не влияет на результат.
func (s *AuthService) Signup(ctx context.Context, email, username, password string) (*models.User, error) {
	if err := validation.ValidateSignup(email, username, password); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, storage.ErrUserAlreadyExists
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	gravatar := avatar.GravatarURL(email)
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
		Avatar:       &gravatar,
	}

	// Уникальность email гарантирует БД, проверка выше только ранний выход
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, user)

	return user, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) {
	token, err := s.tokens.IssueConfirmationToken(user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue confirmation token",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}

	if err := s.notifier.SendConfirmation(user.Email, user.Username, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to queue confirmation email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// Login проверяет учетные данные и выдает новую пару токенов.
// Проверки идут в порядке: email существует, email подтвержден, пароль верный.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.Confirmed {
		return nil, ErrEmailNotConfirmed
	}

	if err := s.hasher.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return pair, nil
}

// Refresh обменивает refresh token на новую пару.
// Если токен валиден, но не совпадает с сохраненным, сохраненный токен
// сбрасывается (все сессии пользователя отзываются) и возвращается ErrRefreshTokenMismatch.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.tokens.Verify(refreshToken, tokens.TypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, tokens.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasRefreshToken(refreshToken) {
		if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		s.logger.WarnContext(ctx, "refresh token reuse detected, sessions revoked",
			slog.String("user_id", user.ID),
		)
		return nil, ErrRefreshTokenMismatch
	}

	return s.issuePair(ctx, user)
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ConfirmEmail подтверждает email по токену из письма.
// Возвращает alreadyConfirmed = true, если email был подтвержден ранее.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (alreadyConfirmed bool, err error) {
	email, err := s.tokens.Verify(token, tokens.TypeEmail)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, ErrVerification
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.users.ConfirmEmail(ctx, email); err != nil {
		return false, fmt.Errorf("failed to confirm email: %w", err)
	}

	s.logger.InfoContext(ctx, "email confirmed", slog.String("user_id", user.ID))
	return false, nil
}

// RequestEmail повторно отправляет письмо подтверждения.
// Для неизвестного email письмо не отправляется, но ответ тот же, что и для
// неподтвержденного пользователя.
func (s *AuthService) RequestEmail(ctx context.Context, email string) (alreadyConfirmed bool, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Confirmed {
		return true, nil
	}

	s.sendConfirmation(ctx, user)
	return false, nil
}

// ForgotPassword отправляет токен сброса пароля, если пользователь существует
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.IssueResetToken(user.Email, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.notifier.SendPasswordReset(user.Email, user.Username, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to queue password reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса и отзывает refresh token
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword("new_password", newPassword); err != nil {
		return err
	}

	// токен действует только до первой смены пароля
	var user *models.User
	email, err := s.tokens.VerifyResetToken(token, func(subject string) (string, error) {
		u, err := s.users.GetUserByEmail(ctx, subject)
		if err != nil {
			return "", err
		}
		user = u
		return u.PasswordHash, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrInvalidToken):
			return fmt.Errorf("%w: %w", ErrInvalidResetToken, err)
		case errors.Is(err, storage.ErrUserNotFound):
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", slog.String("user_id", user.ID))
	return nil
}

// Authenticate возвращает владельца access token
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	email, err := s.tokens.Verify(accessToken, tokens.TypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, tokens.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
