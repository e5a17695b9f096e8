package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const (
	subjectConfirm = "Confirm your email"
	subjectReset   = "Password reset"
)

// Queue принимает письма на асинхронную отправку
type Queue interface {
	Enqueue(msg Message) bool
}

// Notifier формирует письма из шаблонов и ставит их в очередь
type Notifier struct {
	queue           Queue
	baseURL         string
	confirmationTTL time.Duration
	resetTTL        time.Duration
}

// NewNotifier создает Notifier. baseURL используется для ссылок в письмах
// (например, "http://localhost:8080").
func NewNotifier(queue Queue, baseURL string, confirmationTTL, resetTTL time.Duration) *Notifier {
	return &Notifier{
		queue:           queue,
		baseURL:         strings.TrimRight(baseURL, "/"),
		confirmationTTL: confirmationTTL,
		resetTTL:        resetTTL,
	}
}

// SendConfirmation ставит в очередь письмо со ссылкой подтверждения email
func (n *Notifier) SendConfirmation(email, username, token string) error {
	link := n.baseURL + "/api/auth/confirmed_email/" + url.PathEscape(token)

	body, err := render("confirm_email.html", map[string]any{
		"Username": username,
		"Link":     link,
		"ValidFor": humanDuration(n.confirmationTTL),
	})
	if err != nil {
		return err
	}

	n.queue.Enqueue(Message{To: email, Subject: subjectConfirm, HTML: body})
	return nil
}

// SendPasswordReset ставит в очередь письмо с токеном сброса пароля
func (n *Notifier) SendPasswordReset(email, username, token string) error {
	body, err := render("reset_password.html", map[string]any{
		"Username": username,
		"Token":    token,
		"ValidFor": humanDuration(n.resetTTL),
	})
	if err != nil {
		return err
	}

	n.queue.Enqueue(Message{To: email, Subject: subjectReset, HTML: body})
	return nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return d.String()
	}
}
