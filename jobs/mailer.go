package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"
)

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail through a plain SMTP relay (Mailpit in
// development). An empty host disables delivery and logs instead.
type SMTPSender struct {
	Host   string
	Port   int
	From   string
	Logger *slog.Logger
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.Host == "" {
		if s.Logger != nil {
			s.Logger.Info("smtp disabled, dropping email", slog.String("to", to), slog.String("subject", subject))
		}
		return nil
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return smtp.SendMail(addr, nil, s.From, []string{to}, []byte(msg.String()))
}

// NewSendEmailHandler returns the asynq handler for TaskTypeSendEmail.
func NewSendEmailHandler(sender Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := sender.Send(ctx, payload.To, payload.Subject, payload.HTMLBody); err != nil {
			logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		return nil
	}
}
