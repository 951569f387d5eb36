// Package rsvp drives the guest RSVP page: load the event, collect a response,
// persist it, then send the guest a confirmation.
//
// Persisting and confirming are two separate calls. If the confirmation fails after
// the RSVP was stored, Submit still fails with ErrConfirmationFailed and the attempt
// is written to the confirmation ledger so an admin can resend it.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

var (
	ErrNotReady           = errors.New("event is not loaded")
	ErrNoResponse         = errors.New("response selection required")
	ErrConfirmationFailed = errors.New("confirmation not sent")
)

const (
	noResponseMessage         = "Please select whether you are accepting or declining the invitation"
	confirmationFailedMessage = "Failed to process RSVP: Failed to send confirmation email"
)

var validate = validator.New()

type Backend interface {
	GetEvent(ctx context.Context, id string) (*backend.Event, error)
	CreateRSVP(ctx context.Context, p backend.RSVPPayload) (*backend.RSVP, error)
}

// Ledger records confirmation dispatch attempts.
type Ledger interface {
	RecordConfirmation(c *database.Confirmation, sendErr error) (*database.Confirmation, error)
}

type Deps struct {
	Backend     Backend
	Mailer      mailer.Sender
	Ledger      Ledger
	Notifier    notify.Notifier
	PhoneRegion string
	Log         zerolog.Logger
}

// Form is the guest's input. Values survive failed submissions.
type Form struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string
	Response string
}

// Page is the view state of one RSVP page.
type Page struct {
	EventID string
	State   State
	Event   *backend.Event
	Form    Form
	// Err is the message shown to the guest, if any.
	Err string

	deps Deps
}

func New(eventID string, deps Deps) *Page {
	if deps.Notifier == nil {
		deps.Notifier = notify.Discard
	}
	return &Page{EventID: eventID, State: StateLoading, deps: deps}
}

// Load fetches the event. A failure is terminal for the page.
func (p *Page) Load(ctx context.Context) error {
	event, err := p.deps.Backend.GetEvent(ctx, p.EventID)
	if err != nil {
		p.State = StateFailed
		p.Err = "Failed to fetch data: " + err.Error()
		p.deps.Log.Error().Err(err).Str("event_id", p.EventID).Msg("Failed to load event for RSVP")
		return err
	}
	p.Event = event
	p.State = StateReady
	return nil
}

// Submit validates f, persists the RSVP and dispatches the confirmation.
func (p *Page) Submit(ctx context.Context, f Form) error {
	if p.State != StateReady {
		return ErrNotReady
	}

	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	p.Form = f
	p.Err = ""

	response, err := parseResponse(f.Response)
	if err != nil {
		return p.fail(noResponseMessage, err)
	}
	if err := validate.Struct(f); err != nil {
		return p.fail(validationMessage(err), err)
	}

	phone := f.Phone
	if phone != "" {
		normalized, err := utils.NormalizePhoneNumber(phone, p.deps.PhoneRegion)
		if err != nil {
			return p.fail("Invalid phone number format", err)
		}
		phone = normalized
	}

	created, err := p.deps.Backend.CreateRSVP(ctx, backend.RSVPPayload{
		EventID:  p.EventID,
		Name:     f.Name,
		Email:    f.Email,
		Phone:    phone,
		Response: response,
	})
	if err != nil {
		p.deps.Log.Error().Err(err).Str("event_id", p.EventID).Msg("Failed to create RSVP")
		return p.fail("Failed to process RSVP: "+rsvpErrorText(err), err)
	}

	conf := Confirmation(p.Event, f.Name, f.Email, response)
	sendErr := p.deps.Mailer.SendConfirmation(ctx, conf)
	p.record(created.ID, response, conf, phone, sendErr)

	if sendErr != nil {
		p.deps.Log.Warn().Err(sendErr).Str("rsvp_id", created.ID).Msg("RSVP stored but confirmation failed")
		err := fmt.Errorf("%w: %w", ErrConfirmationFailed, sendErr)
		return p.fail(confirmationFailedMessage, err)
	}

	p.deps.Notifier.Notify(notify.Success, "RSVP submitted")
	return nil
}

func (p *Page) fail(msg string, err error) error {
	p.Err = msg
	p.deps.Notifier.Notify(notify.Error, msg)
	return err
}

func (p *Page) record(rsvpID string, response backend.Response, conf mailer.Confirmation, phone string, sendErr error) {
	if p.deps.Ledger == nil {
		return
	}
	_, err := p.deps.Ledger.RecordConfirmation(&database.Confirmation{
		RSVPID:        rsvpID,
		EventID:       p.EventID,
		EventName:     conf.EventName,
		EventDate:     conf.EventDate,
		EventLocation: conf.EventLocation,
		GuestName:     conf.ToName,
		Email:         conf.ToEmail,
		Phone:         phone,
		Response:      string(response),
	}, sendErr)
	if err != nil {
		p.deps.Log.Error().Err(err).Str("rsvp_id", rsvpID).Msg("Failed to record confirmation")
	}
}

func parseResponse(s string) (backend.Response, error) {
	switch backend.Response(s) {
	case backend.ResponseGoing, backend.ResponseNotGoing:
		return backend.Response(s), nil
	}
	return "", ErrNoResponse
}

func rsvpErrorText(err error) string {
	var rejected *backend.RejectedError
	if errors.As(err, &rejected) {
		return rejected.Error()
	}
	return "Failed to submit RSVP"
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Email" && fe.Tag() == "email":
		return "Please enter a valid email address"
	default:
		return strings.ToLower(fe.Field()) + " is required"
	}
}
