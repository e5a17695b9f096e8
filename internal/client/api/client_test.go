package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/pkg/api"
)

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8000/")

	assert.Equal(t, "http://localhost:8000", client.baseURL)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Signup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/signup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.SignupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)
		assert.Equal(t, "alice", req.Username)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.SignupResponse{
			User:   api.User{ID: "user-1", Email: req.Email},
			Detail: "User successfully created. Check your email for confirmation.",
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Signup(context.Background(), api.SignupRequest{
		Email: "alice@example.com", Username: "alice", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
}

// TestClient_Signup_Error проверяет разбор ошибок сервера
func TestClient_Signup_Error(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:           "Account exists",
			statusCode:     http.StatusConflict,
			body:           `{"detail":"Account already exists"}`,
			expectedErrMsg: "signup request failed: server error (409): Account already exists",
		},
		{
			name:           "Plain text body",
			statusCode:     http.StatusInternalServerError,
			body:           "Internal Server Error",
			expectedErrMsg: "signup request failed: request failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Signup(context.Background(), api.SignupRequest{})
			require.Error(t, err)
			assert.EqualError(t, err, tt.expectedErrMsg)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
		})
	}
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret123", r.PostForm.Get("password"))

		_ = json.NewEncoder(w).Encode(api.TokenResponse{
			AccessToken: "access", RefreshToken: "refresh", TokenType: api.TokenTypeBearer,
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
}

func TestClient_Refresh_SendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer old-refresh", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "a2", RefreshToken: "r2"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "r2", resp.RefreshToken)
}

func TestClient_MessageEndpoints(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(api.MessageResponse{Message: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	msg, err := client.RequestEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	_, err = client.ForgotPassword(ctx, "a@example.com")
	require.NoError(t, err)
	_, err = client.ResetPassword(ctx, "tok", "newpass1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/auth/request_email",
		"/api/auth/forgot_password",
		"/api/auth/reset_password",
	}, paths)
}

func TestClient_Contacts(t *testing.T) {
	contact := api.Contact{ID: 7, FirstName: "Ivan", Birthday: "1990-01-01"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		switch r.Method + " " + r.URL.Path {
		case "GET /api/contacts/", "GET /api/contacts/birthdays/":
			assert.Equal(t, "5", r.URL.Query().Get("skip"))
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode([]api.Contact{contact})
		case "GET /api/contacts/search/":
			assert.Equal(t, "Ivan", r.URL.Query().Get("contact_first_name"))
			assert.False(t, r.URL.Query().Has("contact_email"))
			_ = json.NewEncoder(w).Encode([]api.Contact{contact})
		case "GET /api/contacts/7":
			_ = json.NewEncoder(w).Encode(contact)
		case "POST /api/contacts/":
			var req api.ContactRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Ivan", req.FirstName)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(contact)
		case "PUT /api/contacts/7":
			_ = json.NewEncoder(w).Encode(contact)
		case "DELETE /api/contacts/7":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	list, err := client.ListContacts(ctx, "access", 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []api.Contact{contact}, list)

	list, err = client.Birthdays(ctx, "access", 5, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = client.SearchContacts(ctx, "access", SearchQuery{FirstName: "Ivan"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := client.GetContact(ctx, "access", 7)
	require.NoError(t, err)
	assert.Equal(t, contact, *got)

	_, err = client.CreateContact(ctx, "access", api.ContactRequest{FirstName: "Ivan"})
	require.NoError(t, err)

	_, err = client.UpdateContact(ctx, "access", 7, api.ContactRequest{FirstName: "Ivan"})
	require.NoError(t, err)

	require.NoError(t, client.DeleteContact(ctx, "access", 7))
}

func TestClient_Me_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Me(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Could not validate credentials")
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, IsUnauthorized(nil))
	assert.False(t, IsUnauthorized(&Error{StatusCode: http.StatusNotFound}))
	assert.True(t, IsUnauthorized(&Error{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsForbidden(fmt.Errorf("wrapped: %w", &Error{StatusCode: http.StatusForbidden})))
	assert.False(t, IsForbidden(&Error{StatusCode: http.StatusUnauthorized}))
}

func TestClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url).Me(context.Background(), "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.False(t, IsUnauthorized(err))
}
