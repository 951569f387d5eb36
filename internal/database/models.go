package database

import (
	"database/sql"
	"time"
)

// Confirmation statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Confirmation is one RSVP confirmation dispatch as seen by the dashboard. The RSVP
// itself lives in the backend; this row only records whether the guest was told.
type Confirmation struct {
	ID            string
	RSVPID        string
	EventID       string
	EventName     string
	EventDate     string
	EventLocation string
	GuestName     string
	Email         string
	Phone         string
	Response      string
	Status        string
	Error         sql.NullString
	Attempts      int
	AttemptedAt   time.Time
}
