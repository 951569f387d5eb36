package rsvp

import (
	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
)

const dateLayout = "January 02, 2006"

// Confirmation builds the confirmation message parameters for one response.
func Confirmation(event *backend.Event, name, email string, response backend.Response) mailer.Confirmation {
	c := mailer.Confirmation{
		ToName:         name,
		ToEmail:        email,
		EventDate:      FormatDate(nil),
		ResponseStatus: ResponseStatus(response),
	}
	if event != nil {
		c.EventName = event.Name
		c.EventLocation = event.Location
		c.EventDate = FormatDate(event)
	}
	return c
}

// FormatDate renders an event's start date, or "Not specified".
func FormatDate(event *backend.Event) string {
	if event == nil || event.StartAt == nil || event.StartAt.IsZero() {
		return "Not specified"
	}
	return event.StartAt.Format(dateLayout)
}

// ResponseStatus maps a response to the wording used in confirmations.
func ResponseStatus(r backend.Response) string {
	if r == backend.ResponseGoing {
		return "Accepted"
	}
	return "Declined"
}
