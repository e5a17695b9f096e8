package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUsers UserStorage в памяти
type memUsers struct {
	byEmail map[string]*models.User
	failGet error
	failPut error
	mu      sync.Mutex
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return storage.ErrUserAlreadyExists
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *memUsers) update(match func(*models.User) bool, apply func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	for _, u := range m.byEmail {
		if match(u) {
			apply(u)
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *memUsers) ConfirmEmail(_ context.Context, email string) error {
	return m.update(
		func(u *models.User) bool { return u.Email == email },
		func(u *models.User) { u.Confirmed = true },
	)
}

func (m *memUsers) UpdateRefreshToken(_ context.Context, userID string, token *string) error {
	return m.update(
		func(u *models.User) bool { return u.ID == userID },
		func(u *models.User) { u.RefreshToken = token },
	)
}

func (m *memUsers) UpdateAvatar(ctx context.Context, email, url string) (*models.User, error) {
	err := m.update(
		func(u *models.User) bool { return u.Email == email },
		func(u *models.User) { u.Avatar = &url },
	)
	if err != nil {
		return nil, err
	}
	return m.GetUserByEmail(ctx, email)
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	return m.update(
		func(u *models.User) bool { return u.Email == email },
		func(u *models.User) { u.PasswordHash = hash },
	)
}

func (m *memUsers) get(email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email]
}

type sentMail struct {
	email    string
	username string
	token    string
}

type fakeNotifier struct {
	err           error
	confirmations []sentMail
	resets        []sentMail
	mu            sync.Mutex
}

func (n *fakeNotifier) SendConfirmation(email, username, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, sentMail{email, username, token})
	return n.err
}

func (n *fakeNotifier) SendPasswordReset(email, username, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, sentMail{email, username, token})
	return n.err
}

// memContacts ContactStorage в памяти с глобальной уникальностью email и номера
type memContacts struct {
	items  map[int64]*models.Contact
	nextID int64
	mu     sync.Mutex
}

func newMemContacts() *memContacts {
	return &memContacts{items: make(map[int64]*models.Contact), nextID: 1}
}

func (m *memContacts) owned(owner string) []*models.Contact {
	var out []*models.Contact
	for _, c := range m.items {
		if c.UserID == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memContacts) ListContacts(_ context.Context, owner string, offset, limit int) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.owned(owner)
	if offset >= len(all) {
		return []*models.Contact{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memContacts) GetContact(_ context.Context, id int64, owner string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != owner {
		return nil, storage.ErrContactNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memContacts) checkDup(c *models.Contact) error {
	for id, other := range m.items {
		if id != c.ID && other.Email == c.Email {
			return storage.ErrDuplicateContactEmail
		}
	}
	for id, other := range m.items {
		if id != c.ID && other.ContactNumber == c.ContactNumber {
			return storage.ErrDuplicateContactPhone
		}
	}
	return nil
}

func (m *memContacts) CreateContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkDup(c); err != nil {
		return err
	}
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *memContacts) UpdateContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[c.ID]
	if !ok || existing.UserID != c.UserID {
		return storage.ErrContactNotFound
	}
	if err := m.checkDup(c); err != nil {
		return err
	}
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *memContacts) DeleteContact(_ context.Context, id int64, owner string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != owner {
		return nil, storage.ErrContactNotFound
	}
	delete(m.items, id)
	return c, nil
}

func (m *memContacts) search(owner string, match func(*models.Contact) bool) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Contact
	for _, c := range m.owned(owner) {
		if match(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, storage.ErrContactNotFound
	}
	return out, nil
}

func (m *memContacts) SearchByFirstName(_ context.Context, v, owner string) ([]*models.Contact, error) {
	return m.search(owner, func(c *models.Contact) bool { return c.FirstName == v })
}

func (m *memContacts) SearchByLastName(_ context.Context, v, owner string) ([]*models.Contact, error) {
	return m.search(owner, func(c *models.Contact) bool { return c.LastName == v })
}

func (m *memContacts) SearchByEmail(_ context.Context, v, owner string) ([]*models.Contact, error) {
	return m.search(owner, func(c *models.Contact) bool { return c.Email == v })
}

func (m *memContacts) UpcomingBirthdays(
	ctx context.Context, from, to time.Time, offset, limit int, owner string,
) ([]*models.Contact, error) {
	page, err := m.ListContacts(ctx, owner, offset, limit)
	if err != nil {
		return nil, err
	}
	return models.UpcomingBirthdays(page, from, to), nil
}

// fakeAvatarStore avatar.Store в памяти
type fakeAvatarStore struct {
	putErr  error
	objects map[string][]byte
	deleted []string
}

func newFakeAvatarStore() *fakeAvatarStore {
	return &fakeAvatarStore{objects: make(map[string][]byte)}
}

func (s *fakeAvatarStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *fakeAvatarStore) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return errors.New("no such key")
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
