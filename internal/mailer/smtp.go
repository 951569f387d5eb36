package mailer

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Dialer is the part of *gomail.Dialer used to deliver messages.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends confirmations as HTML mail through an SMTP relay.
type SMTP struct {
	dialer Dialer
	from   string
}

func NewSMTP(host string, port int, user, password, from string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// NewSMTPWithDialer is used when delivery must go through a custom dialer.
func NewSMTPWithDialer(d Dialer, from string) *SMTP {
	return &SMTP{dialer: d, from: from}
}

func (m *SMTP) SendConfirmation(ctx context.Context, c Confirmation) error {
	if m.from == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", c.ToEmail, c.ToName)
	msg.SetHeader("Subject", fmt.Sprintf("RSVP %s: %s", c.ResponseStatus, c.EventName))
	msg.SetBody("text/html", confirmationHTML(c))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

func confirmationHTML(c Confirmation) string {
	e := html.EscapeString
	return `
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
			<h2 style="text-align: center;">` + e(c.EventName) + `</h2>
			<p>Hi ` + e(c.ToName) + `,</p>
			<p>Your response has been recorded: <strong>` + e(c.ResponseStatus) + `</strong>.</p>
			<p>Date: ` + e(c.EventDate) + `<br>Location: ` + e(c.EventLocation) + `</p>
		</div>
	`
}
