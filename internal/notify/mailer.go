// internal/notify/mailer.go
//
// GadgetCloud Forms – outbound mail transport.
//
// Context
//   The fan-out composes admin notifications and auto-replies and hands
//   them to a Mailer.  The production implementation speaks SMTP via
//   wneessen/go-mail; tests inject a recording fake.  Sends are bounded by
//   the caller's context so a slow relay cannot stall the fan-out group
//   past its deadline.
//
//------------------------------------------------------------------------------

package notify

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/gadgetcloud-io/forms-service/internal/config"
)

// Mailer sends one email with optional text and HTML bodies.  Either body
// may be empty, but not both.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, text, html string) error
}

// SMTPMailer implements Mailer over an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds the production mailer from the email config block.
func NewSMTPMailer(cfg config.Email) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers one message.  HTML, when present, is attached as the
// alternative part so text-only readers still get the payload.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, text, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: from %q: %w", m.from, err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("notify: to %v: %w", to, err)
	}
	msg.Subject(subject)

	switch {
	case text != "" && html != "":
		msg.SetBodyString(mail.TypeTextPlain, text)
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	case html != "":
		msg.SetBodyString(mail.TypeTextHTML, html)
	default:
		msg.SetBodyString(mail.TypeTextPlain, text)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	return nil
}
