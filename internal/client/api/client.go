package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/contactbook/pkg/api"
)

// Error ответ сервера с кодом вне диапазона 2xx
type Error struct {
	Detail     string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
}

// IsUnauthorized сообщает, что сервер отклонил токен
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden сообщает, что сервер отказал в доступе (например, отозванный refresh token)
func IsForbidden(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

// SearchQuery параметры поиска контакта, используется первый непустой
type SearchQuery struct {
	FirstName string
	LastName  string
	Email     string
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Authorization переносится при редиректе (например, на путь со слэшем)
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Signup регистрирует нового пользователя
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	var resp api.SignupResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", "", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию по email и паролю (OAuth2 password form)
func (c *Client) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	form := url.Values{"username": {email}, "password": {password}}
	body := strings.NewReader(form.Encode())

	var resp api.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", "application/x-www-form-urlencoded", body, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/refresh_token", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// RequestEmail повторно отправляет письмо подтверждения
func (c *Client) RequestEmail(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "/api/auth/request_email", api.EmailRequest{Email: email})
}

// ForgotPassword запрашивает письмо для сброса пароля
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, "/api/auth/forgot_password", api.EmailRequest{Email: email})
}

// ResetPassword устанавливает новый пароль по токену из письма
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return c.message(ctx, "/api/auth/reset_password", api.ResetPasswordRequest{Token: token, NewPassword: newPassword})
}

func (c *Client) message(ctx context.Context, path string, body any) (string, error) {
	var resp api.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context, token string) (*api.User, error) {
	var user api.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListContacts возвращает страницу контактов
func (c *Client) ListContacts(ctx context.Context, token string, skip, limit int) ([]api.Contact, error) {
	return c.contacts(ctx, "/api/contacts/"+pageQuery(skip, limit), token)
}

// Birthdays возвращает контакты с днем рождения в ближайшие 7 дней
func (c *Client) Birthdays(ctx context.Context, token string, skip, limit int) ([]api.Contact, error) {
	return c.contacts(ctx, "/api/contacts/birthdays/"+pageQuery(skip, limit), token)
}

// SearchContacts ищет контакт по имени, фамилии или email
func (c *Client) SearchContacts(ctx context.Context, token string, q SearchQuery) ([]api.Contact, error) {
	params := url.Values{}
	if q.FirstName != "" {
		params.Set("contact_first_name", q.FirstName)
	}
	if q.LastName != "" {
		params.Set("contact_last_name", q.LastName)
	}
	if q.Email != "" {
		params.Set("contact_email", q.Email)
	}
	path := "/api/contacts/search/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.contacts(ctx, path, token)
}

func (c *Client) contacts(ctx context.Context, path, token string) ([]api.Contact, error) {
	var list []api.Contact
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetContact возвращает контакт по id
func (c *Client) GetContact(ctx context.Context, token string, id int64) (*api.Contact, error) {
	var contact api.Contact
	if err := c.doJSON(ctx, http.MethodGet, contactPath(id), token, nil, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// CreateContact создает контакт
func (c *Client) CreateContact(ctx context.Context, token string, req api.ContactRequest) (*api.Contact, error) {
	var contact api.Contact
	if err := c.doJSON(ctx, http.MethodPost, "/api/contacts/", token, req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// UpdateContact заменяет поля контакта
func (c *Client) UpdateContact(ctx context.Context, token string, id int64, req api.ContactRequest) (*api.Contact, error) {
	var contact api.Contact
	if err := c.doJSON(ctx, http.MethodPut, contactPath(id), token, req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// DeleteContact удаляет контакт
func (c *Client) DeleteContact(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, contactPath(id), token, nil, nil)
}

func contactPath(id int64) string {
	return "/api/contacts/" + strconv.FormatInt(id, 10)
}

func pageQuery(skip, limit int) string {
	return "?" + url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}.Encode()
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, result any) error {
	if body == nil {
		return c.do(ctx, method, path, token, "", nil, result)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, method, path, token, "application/json", bytes.NewReader(data), result)
}

// do выполняет HTTP запрос
func (c *Client) do(ctx context.Context, method, path, token, contentType string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Detail = errResp.Detail
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
