package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost стоимость bcrypt по умолчанию
const DefaultCost = bcrypt.DefaultCost

// ErrPasswordMismatch пароль не соответствует хешу
var ErrPasswordMismatch = errors.New("password does not match")

// Hasher хеширует и проверяет пароли пользователей через bcrypt.
// Нулевое значение использует DefaultCost.
type Hasher struct {
	Cost int
}

// NewHasher создает Hasher с заданной стоимостью.
// Значения вне допустимого диапазона bcrypt заменяются на DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// HashPassword возвращает bcrypt хеш пароля
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword проверяет пароль по сохраненному хешу.
// Возвращает ErrPasswordMismatch, если пароль неверный.
func (h *Hasher) VerifyPassword(password, hash string) error {
	if hash == "" {
		return fmt.Errorf("hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	return nil
}
