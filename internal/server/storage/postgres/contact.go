package postgres

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
	var info sql.NullString

	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.ContactNumber,
		&c.Birthday,
		&info,
	); err != nil {
		return nil, err
	}

	y, m, d := c.Birthday.Date()
	c.Birthday = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	c.AdditionalInformation = stringPtr(info)
	return c, nil
}

func (s *Storage) queryContacts(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return contacts, nil
}

// ListContacts returns a page of owner's contacts ordered by ID
func (s *Storage) ListContacts(ctx context.Context, owner string, offset, limit int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	return s.queryContacts(ctx, query, owner, limit, offset)
}

// GetContact returns owner's contact by ID
func (s *Storage) GetContact(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`

	c, err := scanContact(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContactNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// checkDuplicates ищет другой контакт с тем же email или номером (среди всех пользователей)
func checkDuplicates(ctx context.Context, tx *sql.Tx, c *models.Contact, exceptID int64) error {
	var id int64

	err := tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE email = $1 AND id <> $2 LIMIT 1`, c.Email, exceptID,
	).Scan(&id)
	if err == nil {
		return storage.ErrDuplicateContactEmail
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("db error: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE contact_number = $1 AND id <> $2 LIMIT 1`, c.ContactNumber, exceptID,
	).Scan(&id)
	if err == nil {
		return storage.ErrDuplicateContactPhone
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// mapContactWriteError переводит нарушение UNIQUE при гонке двух запросов
func mapContactWriteError(err error) error {
	name, ok := uniqueConstraint(err)
	if !ok {
		return fmt.Errorf("db error: %w", err)
	}
	switch name {
	case "contacts_email_key":
		return storage.ErrDuplicateContactEmail
	case "contacts_contact_number_key":
		return storage.ErrDuplicateContactPhone
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// CreateContact inserts a new contact and fills its ID
func (s *Storage) CreateContact(ctx context.Context, c *models.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := checkDuplicates(ctx, tx, c, 0); err != nil {
		return err
	}

	query := `INSERT INTO contacts (user_id, first_name, last_name, email, contact_number, birthday, additional_information)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err = tx.QueryRowContext(ctx, query,
		c.UserID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.ContactNumber,
		c.Birthday,
		nullString(c.AdditionalInformation),
	).Scan(&id)
	if err != nil {
		return mapContactWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	c.ID = id
	return nil
}

// UpdateContact replaces all editable fields of owner's contact
func (s *Storage) UpdateContact(ctx context.Context, c *models.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`, c.ID, c.UserID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrContactNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	if err := checkDuplicates(ctx, tx, c, c.ID); err != nil {
		return err
	}

	query := `UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, contact_number = $4, birthday = $5, additional_information = $6
		WHERE id = $7 AND user_id = $8`

	_, err = tx.ExecContext(ctx, query,
		c.FirstName,
		c.LastName,
		c.Email,
		c.ContactNumber,
		c.Birthday,
		nullString(c.AdditionalInformation),
		c.ID,
		c.UserID,
	)
	if err != nil {
		return mapContactWriteError(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteContact removes owner's contact and returns it
func (s *Storage) DeleteContact(ctx context.Context, id int64, owner string) (*models.Contact, error) {
	query := `DELETE FROM contacts WHERE id = $1 AND user_id = $2 RETURNING ` + contactColumns

	c, err := scanContact(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContactNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (s *Storage) searchBy(ctx context.Context, column, value, owner string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + column + ` = $1 AND user_id = $2 ORDER BY id`

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
