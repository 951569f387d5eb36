// Package mailer dispatches RSVP confirmation messages through a transactional
// template service or plain SMTP.
package mailer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by senders missing credentials.
var ErrNotConfigured = errors.New("mailer not configured")

// Confirmation holds the template parameters of one RSVP confirmation.
type Confirmation struct {
	ToName         string
	ToEmail        string
	EventName      string
	EventDate      string
	EventLocation  string
	ResponseStatus string
}

// Params returns the template parameters keyed by their template variable names.
func (c Confirmation) Params() map[string]string {
	return map[string]string{
		"to_name":         c.ToName,
		"to_email":        c.ToEmail,
		"event_name":      c.EventName,
		"event_date":      c.EventDate,
		"event_location":  c.EventLocation,
		"response_status": c.ResponseStatus,
	}
}

type Sender interface {
	SendConfirmation(ctx context.Context, c Confirmation) error
}
