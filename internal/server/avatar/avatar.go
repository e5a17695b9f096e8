// Package avatar хранит изображения профиля пользователей.
package avatar

import (
	"context"
	"crypto/md5" //nolint:gosec // md5 требуется протоколом Gravatar
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store сохраняет объекты и возвращает их публичный URL
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// IsImage сообщает, поддерживается ли тип содержимого в качестве аватара
func IsImage(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// NewKey возвращает уникальный ключ объекта для аватара пользователя
func NewKey(userID, contentType string) string {
	return path.Join("avatars", userID, uuid.NewString()+extensions[contentType])
}

// GravatarURL строит URL аватара Gravatar по email.
// Используется как аватар по умолчанию при регистрации.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}
