package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/handlers"
	"github.com/iudanet/contactbook/internal/server/tokens"
)

// Authenticator находит владельца access token
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки access token.
// Пользователь кладется в контекст запроса (handlers.GetUser).
func AuthMiddleware(logger *slog.Logger, authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := handlers.BearerToken(r)
			if !ok {
				logger.DebugContext(ctx, "missing bearer token", slog.String("path", r.URL.Path))
				w.Header().Set("WWW-Authenticate", "Bearer")
				handlers.WriteError(logger, w, handlers.DetailNotAuthenticated, http.StatusUnauthorized)
				return
			}

			user, err := authn.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, tokens.ErrInvalidToken) {
					logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
					w.Header().Set("WWW-Authenticate", "Bearer")
					handlers.WriteError(logger, w, handlers.DetailBadCredentials, http.StatusUnauthorized)
					return
				}
				logger.ErrorContext(ctx, "failed to authenticate", slog.Any("error", err))
				handlers.WriteError(logger, w, handlers.DetailInternal, http.StatusInternalServerError)
				return
			}

			logger.DebugContext(ctx, "user authenticated", slog.String("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, user)))
		})
	}
}
