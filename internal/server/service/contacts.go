package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/storage"
	"github.com/iudanet/contactbook/internal/validation"
)

const (
	// DefaultLimit размер страницы по умолчанию
	DefaultLimit = 100
	// BirthdayWindow длина окна ближайших дней рождения
	BirthdayWindow = 7 * 24 * time.Hour
)

// Page параметры пагинации
type Page struct {
	Skip  int
	Limit int
}

func (p Page) validate() error {
	if p.Skip < 0 {
		return &validation.Error{Field: "skip", Message: "skip must not be negative"}
	}
	if p.Limit < 0 {
		return &validation.Error{Field: "limit", Message: "limit must not be negative"}
	}
	return nil
}

// SearchQuery параметры поиска. Используется первый непустой параметр
// в порядке FirstName, LastName, Email.
type SearchQuery struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactService реализует сценарии работы с адресной книгой
type ContactService struct {
	contacts storage.ContactStorage
	logger   *slog.Logger
	now      func() time.Time
}

// NewContactService создает ContactService
func NewContactService(contacts storage.ContactStorage, logger *slog.Logger) *ContactService {
	return &ContactService{
		contacts: contacts,
		logger:   logger,
		now:      time.Now,
	}
}

// List возвращает страницу контактов владельца
func (s *ContactService) List(ctx context.Context, owner string, page Page) ([]*models.Contact, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	return s.contacts.ListContacts(ctx, owner, page.Skip, page.Limit)
}

// Get возвращает контакт владельца
func (s *ContactService) Get(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	return s.contacts.GetContact(ctx, id, owner)
}

// Create валидирует и сохраняет новый контакт владельца
func (s *ContactService) Create(ctx context.Context, owner string, c *models.Contact) (*models.Contact, error) {
	c.UserID = owner
	c.ID = 0
	if err := validation.ValidateContact(c, s.now()); err != nil {
		return nil, err
	}

	if err := s.contacts.CreateContact(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "contact created",
		slog.String("user_id", owner),
		slog.Int64("contact_id", c.ID),
	)
	return c, nil
}

// Update полностью заменяет поля контакта владельца
func (s *ContactService) Update(ctx context.Context, id int64, owner string, c *models.Contact) (*models.Contact, error) {
	c.ID = id
	c.UserID = owner
	if err := validation.ValidateContact(c, s.now()); err != nil {
		return nil, err
	}

	if err := s.contacts.UpdateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete удаляет контакт владельца и возвращает его
func (s *ContactService) Delete(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	c, err := s.contacts.DeleteContact(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "contact deleted",
		slog.String("user_id", owner),
		slog.Int64("contact_id", id),
	)
	return c, nil
}

// Search ищет контакты по точному совпадению одного поля.
// Пустой результат возвращается как storage.ErrContactNotFound.
func (s *ContactService) Search(ctx context.Context, owner string, q SearchQuery) ([]*models.Contact, error) {
	switch {
	case q.FirstName != "":
		return s.contacts.SearchByFirstName(ctx, q.FirstName, owner)
	case q.LastName != "":
		return s.contacts.SearchByLastName(ctx, q.LastName, owner)
	case q.Email != "":
		return s.contacts.SearchByEmail(ctx, q.Email, owner)
	default:
		return nil, ErrSearchParamRequired
	}
}

// UpcomingBirthdays возвращает контакты с днем рождения в ближайшие 7 дней
// (сегодня не включается, седьмой день включается)
func (s *ContactService) UpcomingBirthdays(ctx context.Context, owner string, page Page) ([]*models.Contact, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}

	today := s.now()
	return s.contacts.UpcomingBirthdays(ctx, today, today.Add(BirthdayWindow), page.Skip, page.Limit, owner)
}
