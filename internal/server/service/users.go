package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/avatar"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/validation"
)

// UserService управляет профилем пользователя
type UserService struct {
	users  storage.UserStorage
	store  avatar.Store
	logger *slog.Logger
}

// NewUserService создает UserService
func NewUserService(users storage.UserStorage, store avatar.Store, logger *slog.Logger) *UserService {
	return &UserService{users: users, store: store, logger: logger}
}

// UpdateAvatar загружает изображение в хранилище и сохраняет его URL.
// Если обновить пользователя не удалось, загруженный объект удаляется.
func (s *UserService) UpdateAvatar(
	ctx context.Context, user *models.User, r io.Reader, size int64, contentType string,
) (*models.User, error) {
	if !avatar.IsImage(contentType) {
		return nil, &validation.Error{Field: "file", Message: fmt.Sprintf("unsupported image type %q", contentType)}
	}

	key := avatar.NewKey(user.ID, contentType)
	url, err := s.store.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	updated, err := s.users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to delete orphaned avatar",
				slog.String("key", key),
				slog.Any("error", delErr),
			)
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	s.logger.InfoContext(ctx, "avatar updated", slog.String("user_id", user.ID))
	return updated, nil
}
