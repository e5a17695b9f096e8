package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/validation"
)

func seedUser(t *testing.T, users *memUsers) *models.User {
	t.Helper()
	u := &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", CreatedAt: time.Now()}
	require.NoError(t, users.CreateUser(context.Background(), u))
	return u
}

func TestUserService_UpdateAvatar(t *testing.T) {
	users := newMemUsers()
	store := newFakeAvatarStore()
	svc := NewUserService(users, store, setupTestLogger())
	u := seedUser(t, users)

	updated, err := svc.UpdateAvatar(context.Background(), u, strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	assert.True(t, strings.HasPrefix(*updated.Avatar, "https://cdn.example.com/avatars/u-1/"))
	assert.True(t, strings.HasSuffix(*updated.Avatar, ".png"))
	assert.Len(t, store.objects, 1)
}

func TestUserService_UpdateAvatar_RejectsNonImage(t *testing.T) {
	users := newMemUsers()
	store := newFakeAvatarStore()
	svc := NewUserService(users, store, setupTestLogger())
	u := seedUser(t, users)

	_, err := svc.UpdateAvatar(context.Background(), u, strings.NewReader("%PDF"), 4, "application/pdf")
	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "file", vErr.Field)
	assert.Empty(t, store.objects)
}

func TestUserService_UpdateAvatar_CleansUpOnDBError(t *testing.T) {
	users := newMemUsers()
	store := newFakeAvatarStore()
	svc := NewUserService(users, store, setupTestLogger())
	u := seedUser(t, users)
	users.failPut = errors.New("db down")

	_, err := svc.UpdateAvatar(context.Background(), u, strings.NewReader("png"), 3, "image/png")
	require.Error(t, err)
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 1)
}

func TestUserService_UpdateAvatar_UploadError(t *testing.T) {
	users := newMemUsers()
	store := newFakeAvatarStore()
	store.putErr = errors.New("s3 unavailable")
	svc := NewUserService(users, store, setupTestLogger())
	u := seedUser(t, users)

	_, err := svc.UpdateAvatar(context.Background(), u, strings.NewReader("png"), 3, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 unavailable")
	assert.Nil(t, users.get("alice@example.com").Avatar)
}
