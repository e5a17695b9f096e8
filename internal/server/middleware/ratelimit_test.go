package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/contactbook/internal/server/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	counter := ratelimit.NewMemory(0)
	defer counter.Stop()

	handler := RateLimitMiddleware(counter, 1, 20*time.Second, false, setupTestLogger())(okHandler())

	request := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, request("/api/users/me", "10.0.0.1").Code)

	w := request("/api/users/me", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "20", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), DetailTooManyRequests)

	// другой путь и другой клиент считаются отдельно
	assert.Equal(t, http.StatusOK, request("/api/users/avatar", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request("/api/users/me", "10.0.0.2").Code)
}

func TestRateLimitMiddleware_SameClientDifferentPorts(t *testing.T) {
	counter := ratelimit.NewMemory(0)
	defer counter.Stop()

	handler := RateLimitMiddleware(counter, 1, time.Minute, false, setupTestLogger())(okHandler())

	for i, addr := range []string{"10.0.0.1:1000", "10.0.0.1:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
}

func TestRateLimitMiddleware_SpoofedForwardedForIgnored(t *testing.T) {
	counter := ratelimit.NewMemory(0)
	defer counter.Stop()

	handler := RateLimitMiddleware(counter, 1, time.Minute, false, setupTestLogger())(okHandler())

	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.RemoteAddr = "10.0.0.1:40000"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}
}

func TestRateLimitMiddleware_TrustedProxy(t *testing.T) {
	counter := ratelimit.NewMemory(0)
	defer counter.Stop()

	handler := RateLimitMiddleware(counter, 1, time.Minute, true, setupTestLogger())(okHandler())

	// за прокси разные клиенты приходят с одного адреса
	for _, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.RemoteAddr = "10.0.0.1:40000"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string, time.Duration) (int, error) {
	return 0, errors.New("bolt: database not open")
}

func TestRateLimitMiddleware_CounterErrorLetsRequestThrough(t *testing.T) {
	handler := RateLimitMiddleware(failingCounter{}, 1, time.Second, false, setupTestLogger())(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		expectedIP string
		trustProxy bool
	}{
		{name: "X-Forwarded-For single", remoteAddr: "10.0.0.1:12345", xff: "192.168.1.1", expectedIP: "192.168.1.1", trustProxy: true},
		{name: "X-Forwarded-For multiple", remoteAddr: "10.0.0.1:12345", xff: "192.168.1.1, 10.0.0.2", expectedIP: "192.168.1.1", trustProxy: true},
		{name: "X-Real-IP", remoteAddr: "10.0.0.1:12345", xRealIP: "192.168.2.1", expectedIP: "192.168.2.1", trustProxy: true},
		{name: "RemoteAddr without port", remoteAddr: "192.168.3.1:54321", expectedIP: "192.168.3.1"},
		{name: "RemoteAddr unparsable", remoteAddr: "pipe", expectedIP: "pipe"},
		{
			name: "X-Forwarded-For wins", remoteAddr: "10.0.0.1:12345",
			xff: "192.168.1.1", xRealIP: "192.168.2.1", expectedIP: "192.168.1.1", trustProxy: true,
		},
		{
			name: "proxy headers ignored without trusted proxy", remoteAddr: "10.0.0.1:12345",
			xff: "192.168.1.1", xRealIP: "192.168.2.1", expectedIP: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.expectedIP, getClientIP(req, tt.trustProxy))
		})
	}
}
