// Package notifier delivers best-effort notifications about order activity.
// Delivery failures are logged and swallowed: a broken mail server must
// never stall or abort trading.
package notifier

import (
	"log/slog"
	"os"

	"github.com/yodabytz/Kryptobot/internal/config"
	"gopkg.in/gomail.v2"
)

type Notifier interface {
	Notify(subject, body string)
}

type Email struct {
	log    *slog.Logger
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmail builds an SMTP notifier. Credentials come from EMAIL_USER and
// EMAIL_PASSWORD, never from the config file.
func NewEmail(log *slog.Logger, cfg config.Notify) *Email {
	user := os.Getenv("EMAIL_USER")
	password := os.Getenv("EMAIL_PASSWORD")

	return &Email{
		log:    log,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, user, password),
		from:   cfg.From,
		to:     cfg.To,
	}
}

func (e *Email) Notify(subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := e.dialer.DialAndSend(m); err != nil {
		e.log.Error("failed to send email", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	e.log.Info("email sent", slog.String("subject", subject))
}

// Noop is used for paper runs and tests.
type Noop struct{}

func (Noop) Notify(subject, body string) {}
