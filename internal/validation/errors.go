package validation

import "fmt"

// Error описывает ошибку валидации конкретного поля запроса
type Error struct {
	Field   string // имя поля в API (например, "contact_number")
	Message string // человекочитаемое описание
}

// Error implements error
func (e *Error) Error() string {
	return e.Message
}

func fieldError(field, format string, args ...any) *Error {
	return &Error{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
