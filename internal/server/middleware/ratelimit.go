package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/contactbook/internal/server/handlers"
	"github.com/iudanet/contactbook/internal/server/ratelimit"
)

// DetailTooManyRequests текст ответа 429
const DetailTooManyRequests = "Too many requests, please try again later"

// RateLimitMiddleware ограничивает число запросов с одного IP к одному пути:
// не больше limit запросов за window.
// Заголовки прокси учитываются только при trustProxy.
// При ошибке счетчика запрос пропускается.
func RateLimitMiddleware(
	counter ratelimit.Counter, limit int, window time.Duration, trustProxy bool, logger *slog.Logger,
) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := getClientIP(r, trustProxy)

			n, err := counter.Increment(ctx, ip+" "+r.URL.Path, window)
			if err != nil {
				logger.ErrorContext(ctx, "rate limit counter failed", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if n > limit {
				logger.WarnContext(ctx, "Rate limit exceeded",
					slog.String("ip", ip),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", retryAfter)
				handlers.WriteError(logger, w, DetailTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса.
// Заголовки X-Forwarded-For и X-Real-IP читаются только за доверенным прокси,
// иначе клиент мог бы подменять их и обходить лимит.
func getClientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteHost(r)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// первый IP в списке это реальный клиент
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
