package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/avatar"
	"github.com/iudanet/contactbook/internal/server/service"
	"github.com/iudanet/contactbook/internal/validation"
	"github.com/iudanet/contactbook/pkg/api"
)

// MaxUploadSize максимальный размер файла для upload-file
const MaxUploadSize = 1_000_000

// ContactService сценарии адресной книги, используемые ContactHandler
type ContactService interface {
	List(ctx context.Context, owner string, page service.Page) ([]*models.Contact, error)
	Get(ctx context.Context, id int64, owner string) (*models.Contact, error)
	Create(ctx context.Context, owner string, c *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, id int64, owner string, c *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id int64, owner string) (*models.Contact, error)
	Search(ctx context.Context, owner string, q service.SearchQuery) ([]*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, owner string, page service.Page) ([]*models.Contact, error)
}

// ContactHandler обрабатывает запросы к адресной книге
type ContactHandler struct {
	responder
	contacts ContactService
	uploads  avatar.Store
}

// NewContactHandler создает новый handler для контактов.
// uploads хранит файлы, загруженные через upload-file.
func NewContactHandler(logger *slog.Logger, contacts ContactService, uploads avatar.Store) *ContactHandler {
	return &ContactHandler{
		responder: responder{logger: logger},
		contacts:  contacts,
		uploads:   uploads,
	}
}

// List обрабатывает GET /api/contacts/?skip=&limit=
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "list_contacts", func(ctx context.Context, owner string) error {
		page, err := parsePage(r)
		if err != nil {
			return err
		}
		list, err := h.contacts.List(ctx, owner, page)
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContacts(list), http.StatusOK)
		return nil
	})
}

// Get обрабатывает GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "get_contact", func(ctx context.Context, owner string) error {
		id, err := parseContactID(r)
		if err != nil {
			return err
		}
		c, err := h.contacts.Get(ctx, id, owner)
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContact(c), http.StatusOK)
		return nil
	})
}

// Create обрабатывает POST /api/contacts/
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "create_contact", func(ctx context.Context, owner string) error {
		c, err := decodeContact(r)
		if err != nil {
			return err
		}
		created, err := h.contacts.Create(ctx, owner, c)
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContact(created), http.StatusCreated)
		return nil
	})
}

// Update обрабатывает PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "update_contact", func(ctx context.Context, owner string) error {
		id, err := parseContactID(r)
		if err != nil {
			return err
		}
		c, err := decodeContact(r)
		if err != nil {
			return err
		}
		updated, err := h.contacts.Update(ctx, id, owner, c)
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContact(updated), http.StatusOK)
		return nil
	})
}

// Delete обрабатывает DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "delete_contact", func(ctx context.Context, owner string) error {
		id, err := parseContactID(r)
		if err != nil {
			return err
		}
		if _, err := h.contacts.Delete(ctx, id, owner); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	})
}

// Search обрабатывает GET /api/contacts/search/
// Используется первый непустой параметр: contact_first_name, contact_last_name, contact_email
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "search_contacts", func(ctx context.Context, owner string) error {
		q := r.URL.Query()
		list, err := h.contacts.Search(ctx, owner, service.SearchQuery{
			FirstName: q.Get("contact_first_name"),
			LastName:  q.Get("contact_last_name"),
			Email:     q.Get("contact_email"),
		})
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContacts(list), http.StatusOK)
		return nil
	})
}

// Birthdays обрабатывает GET /api/contacts/birthdays/
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	h.withOwner(w, r, "upcoming_birthdays", func(ctx context.Context, owner string) error {
		page, err := parsePage(r)
		if err != nil {
			return err
		}
		list, err := h.contacts.UpcomingBirthdays(ctx, owner, page)
		if err != nil {
			return err
		}
		h.sendJSON(w, toAPIContacts(list), http.StatusOK)
		return nil
	})
}

// UploadFile обрабатывает POST /api/contacts/upload-file/
// Файл сохраняется под случайным именем, при ошибке частичный файл удаляется.
func (h *ContactHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// запас на заголовки multipart
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+64<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, tooLargeDetail(), http.StatusRequestEntityTooLarge)
			return
		}
		h.sendError(w, "file: field required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if header.Size > MaxUploadSize {
		h.sendError(w, tooLargeDetail(), http.StatusRequestEntityTooLarge)
		return
	}

	key := uuid.NewString() + sanitizeExt(header.Filename)
	contentType := header.Header.Get("Content-Type")
	path, err := h.uploads.Put(ctx, key, io.LimitReader(file, MaxUploadSize), header.Size, contentType)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store upload", slog.Any("error", err))
		h.sendError(w, DetailInternal, http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "file uploaded", slog.String("key", key), slog.Int64("size", header.Size))
	h.sendJSON(w, api.UploadResponse{FilePath: path}, http.StatusOK)
}

// withOwner достает владельца из контекста и переводит ошибку fn в HTTP ответ
func (h *ContactHandler) withOwner(
	w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, owner string) error,
) {
	ctx := r.Context()
	user, ok := GetUser(ctx)
	if !ok {
		h.sendError(w, DetailNotAuthenticated, http.StatusUnauthorized)
		return
	}
	if err := fn(ctx, user.ID); err != nil {
		h.handleError(ctx, w, err, op)
	}
}

func tooLargeDetail() string {
	return "File too large, max size is " + strconv.Itoa(MaxUploadSize) + " bytes"
}

// sanitizeExt возвращает расширение имени файла, если оно состоит из латиницы и цифр
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func parseContactID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &validation.Error{Field: "contact_id", Message: "must be an integer"}
	}
	return id, nil
}

func parsePage(r *http.Request) (service.Page, error) {
	page := service.Page{Skip: 0, Limit: service.DefaultLimit}
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, &validation.Error{Field: "skip", Message: "must be an integer"}
		}
		page.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, &validation.Error{Field: "limit", Message: "must be an integer"}
		}
		page.Limit = n
	}
	return page, nil
}

func decodeContact(r *http.Request) (*models.Contact, error) {
	var req api.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &validation.Error{Field: "body", Message: "invalid JSON"}
	}

	birthday, err := validation.ParseBirthday(req.Birthday)
	if err != nil {
		return nil, err
	}

	return &models.Contact{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		ContactNumber:         req.ContactNumber,
		Birthday:              birthday,
		AdditionalInformation: req.AdditionalInformation,
	}, nil
}

func toAPIContact(c *models.Contact) api.Contact {
	return api.Contact{
		ID:                    c.ID,
		UserID:                c.UserID,
		FirstName:             c.FirstName,
		LastName:              c.LastName,
		Email:                 c.Email,
		ContactNumber:         c.ContactNumber,
		Birthday:              c.Birthday.Format(models.BirthdayLayout),
		AdditionalInformation: c.AdditionalInformation,
	}
}

func toAPIContacts(list []*models.Contact) []api.Contact {
	out := make([]api.Contact, 0, len(list))
	for _, c := range list {
		out = append(out, toAPIContact(c))
	}
	return out
}
