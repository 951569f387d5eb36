package rsvp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	event     *backend.Event
	getErr    error
	createErr error
	created   []backend.RSVPPayload
}

func (f *fakeBackend) GetEvent(_ context.Context, id string) (*backend.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.event, nil
}

func (f *fakeBackend) CreateRSVP(_ context.Context, p backend.RSVPPayload) (*backend.RSVP, error) {
	f.created = append(f.created, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &backend.RSVP{ID: "rsvp-1", EventID: p.EventID, Response: p.Response}, nil
}

type fakeMailer struct {
	sent []mailer.Confirmation
	err  error
}

func (m *fakeMailer) SendConfirmation(_ context.Context, c mailer.Confirmation) error {
	m.sent = append(m.sent, c)
	return m.err
}

type fakeLedger struct {
	recorded []*database.Confirmation
	errs     []error
}

func (l *fakeLedger) RecordConfirmation(c *database.Confirmation, sendErr error) (*database.Confirmation, error) {
	l.recorded = append(l.recorded, c)
	l.errs = append(l.errs, sendErr)
	return c, nil
}

type fixture struct {
	backend *fakeBackend
	mailer  *fakeMailer
	ledger  *fakeLedger
	notes   *notify.Recorder
	page    *Page
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	start := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	f := &fixture{
		backend: &fakeBackend{event: &backend.Event{ID: "ev1", Name: "Diwali Mela", Location: "Shivaji Park", StartAt: &start}},
		mailer:  &fakeMailer{},
		ledger:  &fakeLedger{},
		notes:   &notify.Recorder{},
	}
	f.page = New("ev1", Deps{
		Backend:     f.backend,
		Mailer:      f.mailer,
		Ledger:      f.ledger,
		Notifier:    f.notes,
		PhoneRegion: "IN",
		Log:         zerolog.Nop(),
	})
	return f
}

func goingForm() Form {
	return Form{Name: "Asha", Email: "asha@example.com", Phone: "98765 43210", Response: "going"}
}

func TestLoadTransitions(t *testing.T) {
	f := newFixture(t)
	if f.page.State != StateLoading {
		t.Fatalf("initial state = %q, want loading", f.page.State)
	}
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.page.State != StateReady || f.page.Event.Name != "Diwali Mela" {
		t.Errorf("page = %+v", f.page)
	}

	failing := newFixture(t)
	failing.backend.getErr = backend.ErrTransport
	if err := failing.page.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if failing.page.State != StateFailed || failing.page.Err == "" {
		t.Errorf("page = %+v", failing.page)
	}
	if err := failing.page.Submit(context.Background(), goingForm()); !errors.Is(err, ErrNotReady) {
		t.Errorf("Submit on failed page = %v, want ErrNotReady", err)
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t)
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := f.page.Submit(context.Background(), goingForm()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(f.backend.created) != 1 {
		t.Fatalf("created %d RSVPs, want 1", len(f.backend.created))
	}
	got := f.backend.created[0]
	if got.EventID != "ev1" || got.Response != backend.ResponseGoing || got.Phone != "+919876543210" {
		t.Errorf("payload = %+v", got)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent %d confirmations, want 1", len(f.mailer.sent))
	}
	conf := f.mailer.sent[0]
	if conf.ResponseStatus != "Accepted" || conf.EventDate != "November 01, 2026" || conf.EventLocation != "Shivaji Park" {
		t.Errorf("confirmation = %+v", conf)
	}

	if len(f.ledger.recorded) != 1 || f.ledger.errs[0] != nil {
		t.Errorf("ledger = %+v %v", f.ledger.recorded, f.ledger.errs)
	}
	if notes := f.notes.All(); len(notes) != 1 || notes[0].Level != notify.Success {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestSubmitWithoutResponseIssuesNoRequest(t *testing.T) {
	for _, response := range []string{"", "null", "maybe"} {
		t.Run("response="+response, func(t *testing.T) {
			f := newFixture(t)
			if err := f.page.Load(context.Background()); err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			form := goingForm()
			form.Response = response
			err := f.page.Submit(context.Background(), form)
			if !errors.Is(err, ErrNoResponse) {
				t.Fatalf("Submit() = %v, want ErrNoResponse", err)
			}
			if len(f.backend.created) != 0 || len(f.mailer.sent) != 0 {
				t.Error("no network call expected without a response")
			}
			if f.page.Err != noResponseMessage {
				t.Errorf("Err = %q", f.page.Err)
			}
			if f.page.Form.Name != "Asha" {
				t.Error("entered values must be kept")
			}
		})
	}
}

func TestSubmitLocalValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
	}{
		{name: "missing name", mutate: func(f *Form) { f.Name = " " }},
		{name: "missing email", mutate: func(f *Form) { f.Email = "" }},
		{name: "bad email", mutate: func(f *Form) { f.Email = "asha-at-example" }},
		{name: "bad phone", mutate: func(f *Form) { f.Phone = "12" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.page.Load(context.Background()); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			form := goingForm()
			tt.mutate(&form)
			if err := f.page.Submit(context.Background(), form); err == nil {
				t.Fatal("expected validation error")
			}
			if len(f.backend.created) != 0 {
				t.Error("no request expected on validation failure")
			}
		})
	}
}

func TestSubmitPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.createErr = &backend.RejectedError{Message: "Event is full"}
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := f.page.Submit(context.Background(), goingForm()); err == nil {
		t.Fatal("expected error")
	}
	if len(f.mailer.sent) != 0 {
		t.Error("confirmation must not be sent when persistence fails")
	}
	if len(f.ledger.recorded) != 0 {
		t.Error("nothing to record when persistence fails")
	}
	if f.page.Err != "Failed to process RSVP: Event is full" {
		t.Errorf("Err = %q", f.page.Err)
	}
}

func TestSubmitConfirmationFailureAfterPersist(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("template service down")
	if err := f.page.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	err := f.page.Submit(context.Background(), goingForm())
	if !errors.Is(err, ErrConfirmationFailed) {
		t.Fatalf("Submit() = %v, want ErrConfirmationFailed", err)
	}

	// The RSVP exists server-side, yet the guest sees an error.
	if len(f.backend.created) != 1 {
		t.Errorf("RSVP should have been persisted once, got %d", len(f.backend.created))
	}
	if f.page.Err != confirmationFailedMessage {
		t.Errorf("Err = %q", f.page.Err)
	}
	if notes := f.notes.All(); len(notes) != 1 || notes[0].Level != notify.Error {
		t.Errorf("notifications = %+v", notes)
	}

	if len(f.ledger.recorded) != 1 || f.ledger.errs[0] == nil {
		t.Fatalf("failed attempt not recorded: %+v", f.ledger.recorded)
	}
	if f.ledger.recorded[0].RSVPID != "rsvp-1" {
		t.Errorf("recorded = %+v", f.ledger.recorded[0])
	}
	if f.page.Form.Email != "asha@example.com" {
		t.Error("entered values must be kept")
	}
}

func TestConfirmationWording(t *testing.T) {
	c := Confirmation(&backend.Event{Name: "Heritage Walk"}, "Ravi", "ravi@example.com", backend.ResponseNotGoing)
	if c.ResponseStatus != "Declined" || c.EventDate != "Not specified" {
		t.Errorf("confirmation = %+v", c)
	}
}
