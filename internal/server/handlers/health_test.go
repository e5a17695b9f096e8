package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/pkg/api"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), pingerFunc(func(context.Context) error { return nil }), "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	handler.Health(w, req)

	resp := w.Result()
	defer func() {
		err := resp.Body.Close()
		assert.NoError(t, err)
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var healthResp api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&healthResp))
	assert.Equal(t, "ok", healthResp.Status)
	assert.Equal(t, "1.2.3", healthResp.Version)
}

func TestHealthHandler_Health_DBDown(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}), "dev")

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthHandler_Root(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), pingerFunc(func(context.Context) error { return nil }), "dev")

	w := httptest.NewRecorder()
	handler.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, w.Body.String())
}
