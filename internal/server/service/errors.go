package service

import "errors"

// Ошибки аутентификации (HTTP 401)
var (
	// ErrInvalidEmail пользователь с таким email не найден при входе
	ErrInvalidEmail = errors.New("invalid email")
	// ErrEmailNotConfirmed email пользователя еще не подтвержден
	ErrEmailNotConfirmed = errors.New("email not confirmed")
	// ErrInvalidPassword пароль не совпадает
	ErrInvalidPassword = errors.New("invalid password")
)

var (
	// ErrRefreshTokenMismatch refresh token валиден, но не совпадает с сохраненным (HTTP 403).
	// Сохраненный токен при этом сбрасывается.
	ErrRefreshTokenMismatch = errors.New("invalid refresh token")

	// ErrVerification токен подтверждения email не прошел проверку (HTTP 400)
	ErrVerification = errors.New("verification error")

	// ErrInvalidResetToken токен сброса пароля не прошел проверку (HTTP 400)
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrSearchParamRequired не передан ни один параметр поиска (HTTP 400)
	ErrSearchParamRequired = errors.New("you must provide at least one parameter")
)
