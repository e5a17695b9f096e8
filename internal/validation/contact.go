package validation

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iudanet/contactbook/internal/models"
)

const (
	// MaxNameLen максимальная длина имени и фамилии контакта
	MaxNameLen = 15
	// MaxAdditionalInfoLen максимальная длина заметок
	MaxAdditionalInfoLen = 250
	// ContactNumberDigits количество цифр в номере после удаления остальных символов
	ContactNumberDigits = 10
	// MaxContactNumberLen размер колонки contacts.contact_number
	MaxContactNumberLen = 20
)

// NormalizeContactNumber оставляет в номере только цифры
func NormalizeContactNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateContactNumber проверяет, что номер содержит ровно 10 цифр
// Разделители ("(", ")", "-", пробелы и т.д.) допускаются и игнорируются
func ValidateContactNumber(number string) error {
	if len(number) > MaxContactNumberLen {
		return fieldError("contact_number", "contact_number must not exceed %d characters", MaxContactNumberLen)
	}
	if len(NormalizeContactNumber(number)) != ContactNumberDigits {
		return fieldError("contact_number", "Invalid contact number: expected exactly %d digits", ContactNumberDigits)
	}
	return nil
}

// ParseBirthday разбирает дату рождения в формате YYYY-MM-DD
func ParseBirthday(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fieldError("birthday", "birthday cannot be empty")
	}
	t, err := time.Parse(models.BirthdayLayout, value)
	if err != nil {
		return time.Time{}, fieldError("birthday", "birthday must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ValidateBirthday отклоняет даты рождения строго позже today.
// Сравниваются только календарные даты, время суток игнорируется.
func ValidateBirthday(birthday, today time.Time) error {
	by, bm, bd := birthday.Date()
	ty, tm, td := today.Date()
	b := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if b.After(t) {
		return fieldError("birthday", "Invalid birthday: date is in the future")
	}
	return nil
}

func validateName(field, value string) error {
	if value == "" {
		return fieldError(field, "%s cannot be empty", field)
	}
	if utf8.RuneCountInString(value) > MaxNameLen {
		return fieldError(field, "%s must not exceed %d characters", field, MaxNameLen)
	}
	return nil
}

// ValidateContact проверяет все поля контакта перед созданием или обновлением
func ValidateContact(c *models.Contact, today time.Time) error {
	if err := validateName("first_name", c.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", c.LastName); err != nil {
		return err
	}
	if err := ValidateEmail("email", c.Email); err != nil {
		return err
	}
	if err := ValidateContactNumber(c.ContactNumber); err != nil {
		return err
	}
	if err := ValidateBirthday(c.Birthday, today); err != nil {
		return err
	}
	if c.AdditionalInformation != nil && utf8.RuneCountInString(*c.AdditionalInformation) > MaxAdditionalInfoLen {
		return fieldError("additional_information", "additional_information must not exceed %d characters", MaxAdditionalInfoLen)
	}
	return nil
}
