package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/iudanet/contactbook/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// UserKey ключ для хранения текущего пользователя в контексте
const UserKey contextKey = "user"

// WithUser возвращает контекст с аутентифицированным пользователем
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser извлекает пользователя из контекста запроса
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>"
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
