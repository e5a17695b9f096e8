package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	Avatar       *string   `json:"avatar"`     // URL аватара (может отсутствовать)
	RefreshToken *string   `json:"-"`          // текущий refresh token (единственный живой)
	ID           string    `json:"id"`         // UUID пользователя
	Username     string    `json:"username"`   // отображаемое имя
	Email        string    `json:"email"`      // уникальный email, используется как логин
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля
	Confirmed    bool      `json:"confirmed"`  // email подтвержден
}

// HasRefreshToken сообщает, совпадает ли token с сохраненным refresh token
func (u *User) HasRefreshToken(token string) bool {
	return u.RefreshToken != nil && *u.RefreshToken == token
}
