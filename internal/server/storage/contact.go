package storage

import (
	"context"
	"time"

	"github.com/iudanet/contactbook/internal/models"
)

// ContactStorage defines interface for contact persistence.
// Every method is scoped by owner (user ID): contacts of other users
// behave as if they do not exist.
type ContactStorage interface {
	// ListContacts returns a page of owner's contacts ordered by ID
	ListContacts(ctx context.Context, owner string, offset, limit int) ([]*models.Contact, error)

	// GetContact returns ErrContactNotFound when contact is absent or not owned
	GetContact(ctx context.Context, id int64, owner string) (*models.Contact, error)

	// CreateContact inserts contact and fills its ID.
	// Email and contact number are unique across all contacts:
	// returns ErrDuplicateContactEmail or ErrDuplicateContactPhone.
	CreateContact(ctx context.Context, contact *models.Contact) error

	// UpdateContact replaces all editable fields of an owned contact.
	// The contact itself is excluded from the uniqueness check.
	UpdateContact(ctx context.Context, contact *models.Contact) error

	// DeleteContact removes contact and returns its last state
	DeleteContact(ctx context.Context, id int64, owner string) (*models.Contact, error)

	// SearchByFirstName, SearchByLastName and SearchByEmail are exact match
	// lookups. An empty result is reported as ErrContactNotFound.
	SearchByFirstName(ctx context.Context, firstName, owner string) ([]*models.Contact, error)
	SearchByLastName(ctx context.Context, lastName, owner string) ([]*models.Contact, error)
	SearchByEmail(ctx context.Context, email, owner string) ([]*models.Contact, error)

	// UpcomingBirthdays takes the page [offset, offset+limit) of owner's
	// contacts and keeps those with birthday in (from, to] by month and day.
	// Pagination is applied before filtering, so a page may hold fewer
	// than limit matches even when more exist.
	UpcomingBirthdays(ctx context.Context, from, to time.Time, offset, limit int, owner string) ([]*models.Contact, error)
}

// Storage is a complete relational backend
type Storage interface {
	UserStorage
	ContactStorage

	// Ping checks database connectivity
	Ping(ctx context.Context) error

	// Close closes the database connection
	Close() error
}
