package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/contactbook/internal/models"
	"github.com/iudanet/contactbook/internal/server/storage"
)

const contactColumns = `id, user_id, first_name, last_name, email, contact_number, birthday, additional_information`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	var birthday string
	var info sql.NullString

	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.ContactNumber,
		&birthday,
		&info,
	); err != nil {
		return nil, err
	}

	b, err := time.Parse(models.BirthdayLayout, birthday)
	if err != nil {
		return nil, fmt.Errorf("invalid birthday %q in contact %d: %w", birthday, c.ID, err)
	}
	c.Birthday = b
	c.AdditionalInformation = stringPtr(info)

	return c, nil
}

func (s *Storage) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return contacts, nil
}

// ListContacts returns a page of owner's contacts
func (s *Storage) ListContacts(ctx context.Context, owner string, offset, limit int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`
	return s.queryContacts(ctx, query, owner, limit, offset)
}

// GetContact returns owner's contact by ID
func (s *Storage) GetContact(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`

	c, err := scanContact(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// checkDuplicates ищет другой контакт (любого пользователя) с тем же email или номером.
// Email проверяется первым. exceptID = 0 для нового контакта.
func checkDuplicates(ctx context.Context, tx *sql.Tx, c *models.Contact, exceptID int64) error {
	var id int64

	err := tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE email = ? AND id <> ? LIMIT 1`, c.Email, exceptID,
	).Scan(&id)
	if err == nil {
		return storage.ErrDuplicateContactEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check contact email: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE contact_number = ? AND id <> ? LIMIT 1`, c.ContactNumber, exceptID,
	).Scan(&id)
	if err == nil {
		return storage.ErrDuplicateContactPhone
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check contact number: %w", err)
	}

	return nil
}

func mapContactWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "contacts.email"):
		return storage.ErrDuplicateContactEmail
	case isUniqueViolation(err, "contacts.contact_number"):
		return storage.ErrDuplicateContactPhone
	default:
		return err
	}
}

// CreateContact inserts a new contact
func (s *Storage) CreateContact(ctx context.Context, c *models.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := checkDuplicates(ctx, tx, c, 0); err != nil {
		return err
	}

	query := `
		INSERT INTO contacts (user_id, first_name, last_name, email, contact_number, birthday, additional_information)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.ContactNumber,
		c.Birthday.Format(models.BirthdayLayout),
		nullString(c.AdditionalInformation),
	)
	if err != nil {
		if mapped := mapContactWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get contact id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.ID = id
	return nil
}

// UpdateContact replaces all editable fields of owner's contact
func (s *Storage) UpdateContact(ctx context.Context, c *models.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE id = ? AND user_id = ?`, c.ID, c.UserID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrContactNotFound
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}

	if err := checkDuplicates(ctx, tx, c, c.ID); err != nil {
		return err
	}

	query := `
		UPDATE contacts
		SET first_name = ?, last_name = ?, email = ?, contact_number = ?, birthday = ?, additional_information = ?
		WHERE id = ? AND user_id = ?
	`
	_, err = tx.ExecContext(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.ContactNumber,
		c.Birthday.Format(models.BirthdayLayout),
		nullString(c.AdditionalInformation),
		c.ID,
		c.UserID,
	)
	if err != nil {
		if mapped := mapContactWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteContact removes owner's contact and returns it
func (s *Storage) DeleteContact(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ? AND user_id = ?`
	c, err := scanContact(tx.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, owner); err != nil {
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func (s *Storage) searchBy(ctx context.Context, column, value, owner string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + column + ` = ? AND user_id = ? ORDER BY id`

	contacts, err := s.queryContacts(ctx, query, value, owner)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, storage.ErrContactNotFound
	}
	return contacts, nil
}

// SearchByFirstName returns owner's contacts with exactly this first name
func (s *Storage) SearchByFirstName(ctx context.Context, firstName, owner string) ([]*models.Contact, error) {
	return s.searchBy(ctx, "first_name", firstName, owner)
}

// SearchByLastName returns owner's contacts with exactly this last name
func (s *Storage) SearchByLastName(ctx context.Context, lastName, owner string) ([]*models.Contact, error) {
	return s.searchBy(ctx, "last_name", lastName, owner)
}

// SearchByEmail returns owner's contacts with exactly this email
func (s *Storage) SearchByEmail(ctx context.Context, email, owner string) ([]*models.Contact, error) {
	return s.searchBy(ctx, "email", email, owner)
}

// UpcomingBirthdays filters one page of owner's contacts by birthday window
func (s *Storage) UpcomingBirthdays(
	ctx context.Context, from, to time.Time, offset, limit int, owner string,
) ([]*models.Contact, error) {
	page, err := s.ListContacts(ctx, owner, offset, limit)
	if err != nil {
		return nil, err
	}
	return models.UpcomingBirthdays(page, from, to), nil
}
