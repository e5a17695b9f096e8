package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrContactNotFound indicates that contact does not exist or belongs to another user
	ErrContactNotFound = errors.New("contact not found")

	// ErrDuplicateContactEmail indicates that another contact already uses this email
	ErrDuplicateContactEmail = errors.New("contact with this email already exists")

	// ErrDuplicateContactPhone indicates that another contact already uses this contact number
	ErrDuplicateContactPhone = errors.New("contact with this contact number already exists")
)
