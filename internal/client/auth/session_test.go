package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/internal/client/api"
	"github.com/iudanet/contactbook/internal/client/storage"
	pkgapi "github.com/iudanet/contactbook/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(_ context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *auth
	m.data = &cp
	return nil
}

func (m *mockAuthStorage) GetAuth(context.Context) (*storage.AuthData, error) {
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *m.data
	return &cp, nil
}

func (m *mockAuthStorage) DeleteAuth(context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(context.Context) (bool, error) {
	return m.data != nil, nil
}

type mockTokenAPI struct {
	loginFunc   func(email, password string) (*pkgapi.TokenResponse, error)
	refreshFunc func(refreshToken string) (*pkgapi.TokenResponse, error)
	refreshes   int
}

func (m *mockTokenAPI) Login(_ context.Context, email, password string) (*pkgapi.TokenResponse, error) {
	return m.loginFunc(email, password)
}

func (m *mockTokenAPI) Refresh(_ context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
	m.refreshes++
	return m.refreshFunc(refreshToken)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSession_Login(t *testing.T) {
	exp := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second)
	refresh := signedToken(t, exp)

	store := &mockAuthStorage{}
	tokens := &mockTokenAPI{
		loginFunc: func(email, password string) (*pkgapi.TokenResponse, error) {
			assert.Equal(t, "alice@example.com", email)
			assert.Equal(t, "secret123", password)
			return &pkgapi.TokenResponse{AccessToken: "access", RefreshToken: refresh}, nil
		},
	}

	auth, err := NewSession(tokens, store, discardLogger()).Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "access", auth.AccessToken)
	assert.Equal(t, exp.Unix(), auth.ExpiresAt)
	assert.Equal(t, auth, store.data)
}

func TestSession_Login_Errors(t *testing.T) {
	t.Run("server rejects", func(t *testing.T) {
		store := &mockAuthStorage{}
		tokens := &mockTokenAPI{loginFunc: func(string, string) (*pkgapi.TokenResponse, error) {
			return nil, &api.Error{StatusCode: http.StatusUnauthorized, Detail: "Invalid password"}
		}}

		_, err := NewSession(tokens, store, discardLogger()).Login(context.Background(), "a@example.com", "x")
		assert.True(t, api.IsUnauthorized(err))
		assert.Nil(t, store.data)
	})

	t.Run("save fails", func(t *testing.T) {
		store := &mockAuthStorage{saveErr: errors.New("disk full")}
		tokens := &mockTokenAPI{loginFunc: func(string, string) (*pkgapi.TokenResponse, error) {
			return &pkgapi.TokenResponse{AccessToken: "a", RefreshToken: "not-a-jwt"}, nil
		}}

		_, err := NewSession(tokens, store, discardLogger()).Login(context.Background(), "a@example.com", "x")
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestSession_LogoutAndCurrent(t *testing.T) {
	ctx := context.Background()
	store := &mockAuthStorage{}
	session := NewSession(&mockTokenAPI{}, store, discardLogger())

	_, err := session.Current(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, session.Logout(ctx), ErrNotLoggedIn)

	store.data = &storage.AuthData{Email: "a@example.com"}
	auth, err := session.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", auth.Email)

	require.NoError(t, session.Logout(ctx))
	assert.Nil(t, store.data)
}

func TestSession_WithToken(t *testing.T) {
	ctx := context.Background()
	unauthorized := &api.Error{StatusCode: http.StatusUnauthorized, Detail: "Could not validate credentials"}

	t.Run("valid token used once", func(t *testing.T) {
		store := &mockAuthStorage{data: &storage.AuthData{AccessToken: "a1", RefreshToken: "r1"}}
		tokens := &mockTokenAPI{}

		var seen []string
		err := NewSession(tokens, store, discardLogger()).WithToken(ctx, func(token string) error {
			seen = append(seen, token)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, seen)
		assert.Zero(t, tokens.refreshes)
	})

	t.Run("refresh on 401 and retry", func(t *testing.T) {
		store := &mockAuthStorage{data: &storage.AuthData{Email: "a@example.com", AccessToken: "a1", RefreshToken: "r1"}}
		tokens := &mockTokenAPI{refreshFunc: func(refreshToken string) (*pkgapi.TokenResponse, error) {
			assert.Equal(t, "r1", refreshToken)
			return &pkgapi.TokenResponse{AccessToken: "a2", RefreshToken: "r2"}, nil
		}}

		var seen []string
		err := NewSession(tokens, store, discardLogger()).WithToken(ctx, func(token string) error {
			seen = append(seen, token)
			if token == "a1" {
				return unauthorized
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2"}, seen)
		assert.Equal(t, "r2", store.data.RefreshToken)
		assert.Equal(t, "a@example.com", store.data.Email)
	})

	t.Run("refresh rejected drops session", func(t *testing.T) {
		store := &mockAuthStorage{data: &storage.AuthData{AccessToken: "a1", RefreshToken: "r1"}}
		tokens := &mockTokenAPI{refreshFunc: func(string) (*pkgapi.TokenResponse, error) {
			return nil, unauthorized
		}}

		err := NewSession(tokens, store, discardLogger()).WithToken(ctx, func(string) error {
			return unauthorized
		})
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, store.data)
	})

	t.Run("revoked refresh token drops session", func(t *testing.T) {
		store := &mockAuthStorage{data: &storage.AuthData{AccessToken: "a1", RefreshToken: "r1"}}
		tokens := &mockTokenAPI{refreshFunc: func(string) (*pkgapi.TokenResponse, error) {
			return nil, &api.Error{StatusCode: http.StatusForbidden, Detail: "Invalid refresh token"}
		}}

		err := NewSession(tokens, store, discardLogger()).WithToken(ctx, func(string) error {
			return unauthorized
		})
		assert.ErrorIs(t, err, ErrSessionExpired)
		assert.Nil(t, store.data)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		store := &mockAuthStorage{data: &storage.AuthData{AccessToken: "a1"}}
		tokens := &mockTokenAPI{}
		notFound := &api.Error{StatusCode: http.StatusNotFound, Detail: "Contact not found"}

		calls := 0
		err := NewSession(tokens, store, discardLogger()).WithToken(ctx, func(string) error {
			calls++
			return notFound
		})
		assert.Equal(t, notFound, err)
		assert.Equal(t, 1, calls)
		assert.Zero(t, tokens.refreshes)
	})

	t.Run("not logged in", func(t *testing.T) {
		err := NewSession(&mockTokenAPI{}, &mockAuthStorage{}, discardLogger()).WithToken(ctx, func(string) error {
			t.Fatal("must not be called")
			return nil
		})
		assert.ErrorIs(t, err, ErrNotLoggedIn)
	})
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, exp.Unix(), tokenExpiry(signedToken(t, exp)))
	assert.Zero(t, tokenExpiry("garbage"))
}
