package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wneessen/go-mail"

	"github.com/opal-spaces/opal-backend/internal/config"
)

// Mailer delivers outbound email. A delivery failure is terminal for the
// request that triggered it; nothing is retried.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends through the configured SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %w", cfg.SMTPPort, err)
	}

	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(cfg.ExternalTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.EmailFrom}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// VerificationEmail renders the registration verification message.
func VerificationEmail(link string) (subject, body string) {
	subject = "Verify Your Email - Opal Spaces"
	body = fmt.Sprintf(`
          <div style="font-family: sans-serif; line-height: 1.5">
            <h2>Welcome to Opal Spaces 👋</h2>
            <p>Thanks for registering! Please verify your email by clicking the link below:</p>
            <a href="%s" style="color: blue">%s</a>
            <p>This link will expire in 24 hours.</p>
          </div>`, link, link)
	return subject, body
}
