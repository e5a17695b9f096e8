package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username (размер колонки users.username)
	MaxUsernameLen = 50

	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 6
	// MaxPasswordBytes bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72

	// MaxEmailLen размер колонки users.email
	MaxEmailLen = 250
)

// ValidateEmail проверяет, что строка является одиночным email адресом без display name
func ValidateEmail(field, email string) error {
	if email == "" {
		return fieldError(field, "%s cannot be empty", field)
	}
	if len(email) > MaxEmailLen {
		return fieldError(field, "%s must not exceed %d characters", field, MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fieldError(field, "%s is not a valid email address", field)
	}

	return nil
}

// ValidateUsername проверяет отображаемое имя пользователя
// Длина: 3-50 символов, без пробелов по краям
func ValidateUsername(username string) error {
	if username == "" {
		return fieldError("username", "username cannot be empty")
	}

	if strings.TrimSpace(username) != username {
		return fieldError("username", "username must not start or end with whitespace")
	}

	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen {
		return fieldError("username", "username must be at least %d characters long", MinUsernameLen)
	}
	if n > MaxUsernameLen {
		return fieldError("username", "username must not exceed %d characters", MaxUsernameLen)
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю
func ValidatePassword(field, password string) error {
	if password == "" {
		return fieldError(field, "password cannot be empty")
	}

	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fieldError(field, "password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordBytes {
		return fieldError(field, "password must not exceed %d bytes", MaxPasswordBytes)
	}

	return nil
}

// ValidateSignup проверяет все поля запроса регистрации
func ValidateSignup(email, username, password string) error {
	if err := ValidateEmail("email", email); err != nil {
		return err
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword("password", password)
}
