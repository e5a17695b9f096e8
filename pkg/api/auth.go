package api

import "time"

// SignupRequest представляет запрос на регистрацию нового пользователя
type SignupRequest struct {
	Email    string `json:"email"`    // email, используется как логин
	Username string `json:"username"` // отображаемое имя
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// User представляет публичные данные пользователя
type User struct {
	CreatedAt time.Time `json:"created_at"`
	Avatar    *string   `json:"avatar"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
}

// SignupResponse представляет ответ на успешную регистрацию
type SignupResponse struct {
	User   User   `json:"user"`
	Detail string `json:"detail"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // JWT refresh token
	TokenType    string `json:"token_type"`    // всегда "bearer"
}

// EmailRequest запрос с одним email (request_email, forgot_password)
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest представляет запрос на установку нового пароля
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse представляет ответ с информационным сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Detail string `json:"detail"` // человекочитаемое описание
}

// TokenTypeBearer значение token_type в TokenResponse
const TokenTypeBearer = "bearer"
