package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/contactbook/internal/models"
)

// MaxAvatarSize максимальный размер изображения аватара
const MaxAvatarSize = 2 << 20

// UserService сценарии профиля, используемые UserHandler
type UserService interface {
	UpdateAvatar(ctx context.Context, user *models.User, r io.Reader, size int64, contentType string) (*models.User, error)
}

// UserHandler обрабатывает запросы к профилю текущего пользователя
type UserHandler struct {
	responder
	users UserService
}

// NewUserHandler создает новый handler профиля
func NewUserHandler(logger *slog.Logger, users UserService) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		users:     users,
	}
}

// Me обрабатывает GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUser(r.Context())
	if !ok {
		h.sendError(w, DetailNotAuthenticated, http.StatusUnauthorized)
		return
	}
	h.sendJSON(w, toAPIUser(user), http.StatusOK)
}

// Avatar обрабатывает PATCH /api/users/avatar
// Тип изображения определяется по содержимому, а не по заголовку клиента
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := GetUser(ctx)
	if !ok {
		h.sendError(w, DetailNotAuthenticated, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, "file: image is too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.sendError(w, "file: field required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if header.Size > MaxAvatarSize {
		h.sendError(w, "file: image is too large", http.StatusRequestEntityTooLarge)
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.handleError(ctx, w, err, "update_avatar")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.handleError(ctx, w, err, "update_avatar")
		return
	}
	contentType := http.DetectContentType(sniff[:n])

	updated, err := h.users.UpdateAvatar(ctx, user, file, header.Size, contentType)
	if err != nil {
		h.handleError(ctx, w, err, "update_avatar")
		return
	}

	h.sendJSON(w, toAPIUser(updated), http.StatusOK)
}
