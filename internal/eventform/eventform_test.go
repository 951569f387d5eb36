package eventform

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	created []backend.EventPayload
	updated map[string]backend.EventPayload
	result  backend.Result
	err     error
}

func (f *fakeBackend) CreateEvent(_ context.Context, p backend.EventPayload) (backend.Result, error) {
	f.created = append(f.created, p)
	return f.result, f.err
}

func (f *fakeBackend) UpdateEvent(_ context.Context, id string, p backend.EventPayload) (backend.Result, error) {
	if f.updated == nil {
		f.updated = map[string]backend.EventPayload{}
	}
	f.updated[id] = p
	return f.result, f.err
}

func validForm() Form {
	return Form{
		Name:     "Diwali Mela",
		About:    "Festival of lights fair",
		Location: "Shivaji Park, Mumbai",
		Venue:    "Main ground",
		Capacity: "250",
		Scale:    "public",
	}
}

func TestPayloadCoercesCapacity(t *testing.T) {
	f := validForm()
	p, err := f.Payload()
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}
	if p.Capacity != 250 {
		t.Errorf("Capacity = %d, want 250", p.Capacity)
	}
	if p.Scale != backend.ScalePublic {
		t.Errorf("Scale = %q, want public", p.Scale)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if n, ok := wire["capacity"].(float64); !ok || n != 250 {
		t.Errorf("wire capacity = %#v, want number 250", wire["capacity"])
	}
	if wire["scale"] != "public" {
		t.Errorf("wire scale = %#v, want literal \"public\"", wire["scale"])
	}
}

func TestValidate(t *testing.T) {
	start := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name      string
		mutate    func(*Form)
		wantField string
	}{
		{name: "valid", mutate: func(*Form) {}},
		{name: "zero capacity", mutate: func(f *Form) { f.Capacity = "0" }},
		{name: "missing name", mutate: func(f *Form) { f.Name = "  " }, wantField: "name"},
		{name: "missing about", mutate: func(f *Form) { f.About = "" }, wantField: "about"},
		{name: "missing location", mutate: func(f *Form) { f.Location = "" }, wantField: "location"},
		{name: "missing venue", mutate: func(f *Form) { f.Venue = "" }, wantField: "venue"},
		{name: "missing capacity", mutate: func(f *Form) { f.Capacity = "" }, wantField: "capacity"},
		{name: "non-numeric capacity", mutate: func(f *Form) { f.Capacity = "lots" }, wantField: "capacity"},
		{name: "negative capacity", mutate: func(f *Form) { f.Capacity = "-5" }, wantField: "capacity"},
		{name: "fractional capacity", mutate: func(f *Form) { f.Capacity = "2.5" }, wantField: "capacity"},
		{name: "unknown scale", mutate: func(f *Form) { f.Scale = "secret" }, wantField: "scale"},
		{name: "empty scale defaults to public", mutate: func(f *Form) { f.Scale = "" }},
		{
			name:      "end before start",
			mutate:    func(f *Form) { f.StartAt, f.EndAt = &start, &before },
			wantField: "endat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestSubmitCreateAndUpdate(t *testing.T) {
	fb := &fakeBackend{result: backend.Result{Success: true, Message: "Event created"}}
	rec := &notify.Recorder{}
	c := New(fb, rec, zerolog.Nop())

	f := validForm()
	if err := c.Submit(context.Background(), "", &f); err != nil {
		t.Fatalf("Submit(create) error = %v", err)
	}
	if len(fb.created) != 1 || fb.created[0].Capacity != 250 {
		t.Errorf("created = %+v", fb.created)
	}

	f = validForm()
	if err := c.Submit(context.Background(), "ev42", &f); err != nil {
		t.Fatalf("Submit(update) error = %v", err)
	}
	if _, ok := fb.updated["ev42"]; !ok {
		t.Errorf("update not sent for ev42: %+v", fb.updated)
	}

	got := rec.All()
	if len(got) != 2 || got[0].Level != notify.Success || got[0].Message != "Event created" {
		t.Errorf("notifications = %+v", got)
	}
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		err     error
		wantMsg string
		wantReq bool
	}{
		{
			name:    "local validation issues no request",
			form:    Form{Name: "Diwali Mela", Capacity: "250abc"},
			wantReq: false,
		},
		{
			name:    "backend rejection shows backend message",
			form:    validForm(),
			err:     &backend.RejectedError{Message: "Event already exists"},
			wantMsg: "Event already exists",
			wantReq: true,
		},
		{
			name:    "transport failure shows generic message",
			form:    validForm(),
			err:     backend.ErrTransport,
			wantMsg: saveFailedMessage,
			wantReq: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{err: tt.err}
			rec := &notify.Recorder{}
			c := New(fb, rec, zerolog.Nop())

			f := tt.form
			if err := c.Submit(context.Background(), "", &f); err == nil {
				t.Fatal("expected an error")
			}
			if sent := len(fb.created) > 0; sent != tt.wantReq {
				t.Errorf("request sent = %v, want %v", sent, tt.wantReq)
			}

			got := rec.All()
			if len(got) != 1 || got[0].Level != notify.Error {
				t.Fatalf("notifications = %+v", got)
			}
			if tt.wantMsg != "" && got[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", got[0].Message, tt.wantMsg)
			}
			if f.Name != tt.form.Name {
				t.Errorf("form was reset: %+v", f)
			}
		})
	}
}

func TestFromEvent(t *testing.T) {
	f := FromEvent(backend.Event{Name: "Heritage Walk", Capacity: 30, Scale: backend.ScalePrivate, ProfileImage: "/img/walk.jpg"})
	if f.Capacity != "30" || f.Scale != "private" || f.ImageURL != "/img/walk.jpg" {
		t.Errorf("form = %+v", f)
	}
}
