// Package mail отправляет служебные письма (подтверждение email, сброс пароля).
package mail

import (
	"context"
	"log/slog"
)

// Message письмо для отправки
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender доставляет письмо получателю
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender пишет письма в лог вместо отправки.
// Используется, когда SMTP не настроен.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender создает LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not sent, SMTP is not configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.HTML),
	)
	return nil
}
