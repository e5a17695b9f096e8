// Package tokens выпускает и проверяет подписанные JWT токены.
//
// Все токены подписываются HS256 и содержат claims {sub, jti, iat, exp, scope}.
// Claim scope различает тип токена, поэтому токен одного типа
// не может быть использован вместо другого. Уникальный jti делает
// токены, выпущенные в одну секунду, различными.
// Токен сброса пароля дополнительно несет отпечаток хеша пароля (fgp)
// и перестает действовать после смены пароля.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Type тип токена, хранится в claim scope
type Type string

const (
	// TypeAccess короткоживущий токен для доступа к API
	TypeAccess Type = "access_token"
	// TypeRefresh токен для получения новой пары токенов
	TypeRefresh Type = "refresh_token"
	// TypeEmail токен подтверждения email
	TypeEmail Type = "email_token"
	// TypeReset токен сброса пароля
	TypeReset Type = "reset_token"
)

const (
	DefaultAccessTTL       = 15 * time.Minute
	DefaultRefreshTTL      = 7 * 24 * time.Hour
	DefaultConfirmationTTL = 7 * 24 * time.Hour
	DefaultResetTTL        = time.Hour
)

// ErrInvalidToken токен не прошел проверку: подпись, алгоритм, срок действия или тип
var ErrInvalidToken = errors.New("invalid token")

// Claims JWT claims токенов приложения
type Claims struct {
	Scope       Type   `json:"scope"`
	Fingerprint string `json:"fgp,omitempty"`
	jwt.RegisteredClaims
}

// Config параметры сервиса токенов.
// Нулевые TTL заменяются значениями по умолчанию.
type Config struct {
	Secret          []byte
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ConfirmationTTL time.Duration
	ResetTTL        time.Duration
}

// Service выпускает и проверяет токены
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    map[Type]time.Duration
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет источник текущего времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создает сервис токенов.
// Секрет не может быть пустым.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}

	s := &Service{
		secret: cfg.Secret,
		now:    time.Now,
		ttl: map[Type]time.Duration{
			TypeAccess:  orDefault(cfg.AccessTTL, DefaultAccessTTL),
			TypeRefresh: orDefault(cfg.RefreshTTL, DefaultRefreshTTL),
			TypeEmail:   orDefault(cfg.ConfirmationTTL, DefaultConfirmationTTL),
			TypeReset:   orDefault(cfg.ResetTTL, DefaultResetTTL),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func orDefault(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// IssueAccessToken выпускает access token для subject (email пользователя)
func (s *Service) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, TypeAccess, "")
}

// IssueRefreshToken выпускает refresh token
func (s *Service) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, TypeRefresh, "")
}

// IssueConfirmationToken выпускает токен для ссылки подтверждения email
func (s *Service) IssueConfirmationToken(subject string) (string, error) {
	return s.issue(subject, TypeEmail, "")
}

// IssueResetToken выпускает токен для сброса пароля,
// привязанный к текущему хешу пароля subject
func (s *Service) IssueResetToken(subject, passwordHash string) (string, error) {
	return s.issue(subject, TypeReset, s.fingerprint(passwordHash))
}

// VerifyResetToken проверяет токен сброса пароля.
// passwordHash возвращает текущий хеш пароля subject; если пароль
// уже сменили, токен не принимается.
func (s *Service) VerifyResetToken(token string, passwordHash func(subject string) (string, error)) (string, error) {
	claims, err := s.verify(token, TypeReset)
	if err != nil {
		return "", err
	}

	hash, err := passwordHash(claims.Subject)
	if err != nil {
		return "", err
	}
	if claims.Fingerprint == "" || !hmac.Equal([]byte(claims.Fingerprint), []byte(s.fingerprint(hash))) {
		return "", fmt.Errorf("%w: password already changed", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *Service) fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
}

// TTL возвращает время жизни токенов заданного типа
func (s *Service) TTL(typ Type) time.Duration {
	return s.ttl[typ]
}

func (s *Service) issue(subject string, typ Type, fingerprint string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject cannot be empty")
	}

	now := s.now()
	claims := Claims{
		Scope:       typ,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl[typ])),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", typ, err)
	}
	return signed, nil
}

// Verify проверяет токен и возвращает его subject.
// Любая ошибка проверки (подпись, алгоритм, истекший срок, чужой scope)
// приводит к ErrInvalidToken.
func (s *Service) Verify(token string, expected Type) (string, error) {
	claims, err := s.verify(token, expected)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) verify(token string, expected Type) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Scope != expected {
		return nil, fmt.Errorf("%w: scope %q, expected %q", ErrInvalidToken, claims.Scope, expected)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	return claims, nil
}
