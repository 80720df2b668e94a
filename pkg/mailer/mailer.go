package mailer

import (
	"context"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/edustack/learnhub-api/pkg/config"
)

// Mailer sends a plain-text + HTML email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// SMTPMailer delivers mail through a configured SMTP server.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

// NewSMTP constructs an SMTPMailer from config.
func NewSMTP(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    from,
		timeout: cfg.Timeout,
	}
}

// Send dials the SMTP server and delivers the message. The dial-and-send runs
// in its own goroutine so the context deadline bounds the wait; gomail itself
// has no context support. The configured SMTP timeout caps the wait even when
// the caller's context carries no deadline.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
