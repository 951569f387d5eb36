package eventdetails

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/geocode"
	"github.com/rs/zerolog"
)

type fakeBackend struct {
	event    *backend.Event
	rsvps    []backend.RSVP
	eventErr error
	rsvpErr  error
}

func (f *fakeBackend) GetEvent(context.Context, string) (*backend.Event, error) {
	return f.event, f.eventErr
}

func (f *fakeBackend) ListRSVPs(context.Context, string) ([]backend.RSVP, error) {
	return f.rsvps, f.rsvpErr
}

type fakeGeocoder struct {
	point geocode.Point
	ok    bool
	calls int
}

func (g *fakeGeocoder) Lookup(context.Context, string) (geocode.Point, bool) {
	g.calls++
	return g.point, g.ok
}

func TestLoad(t *testing.T) {
	fb := &fakeBackend{
		event: &backend.Event{ID: "ev1", Name: "Diwali Mela", Location: "Shivaji Park, Mumbai"},
		rsvps: []backend.RSVP{
			{Response: backend.ResponseGoing},
			{Response: backend.ResponseGoing},
			{Response: backend.ResponseNotGoing},
		},
	}
	geo := &fakeGeocoder{point: geocode.Point{Lat: 19.02, Lon: 72.84}, ok: true}

	d, err := New(fb, geo, zerolog.Nop()).Load(context.Background(), "ev1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if d.Going != 2 || d.NotGoing != 1 {
		t.Errorf("counts = %d/%d, want 2/1", d.Going, d.NotGoing)
	}
	if d.Point == nil || d.Point.Lat != 19.02 {
		t.Errorf("point = %+v", d.Point)
	}
}

func TestLoadWithoutPoint(t *testing.T) {
	tests := []struct {
		name      string
		location  string
		wantCalls int
	}{
		{name: "lookup misses", location: "Somewhere", wantCalls: 1},
		{name: "empty location", location: "", wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{event: &backend.Event{ID: "ev1", Location: tt.location}}
			geo := &fakeGeocoder{}

			d, err := New(fb, geo, zerolog.Nop()).Load(context.Background(), "ev1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if d.Point != nil {
				t.Errorf("point = %+v, want none", d.Point)
			}
			if geo.calls != tt.wantCalls {
				t.Errorf("lookups = %d, want %d", geo.calls, tt.wantCalls)
			}
		})
	}
}

func TestLoadRequiresBoth(t *testing.T) {
	tests := []struct {
		name string
		fb   *fakeBackend
	}{
		{name: "event fails", fb: &fakeBackend{eventErr: backend.ErrTransport}},
		{name: "rsvps fail", fb: &fakeBackend{event: &backend.Event{ID: "ev1"}, rsvpErr: backend.ErrTransport}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fb, nil, zerolog.Nop()).Load(context.Background(), "ev1")
			if !errors.Is(err, backend.ErrTransport) {
				t.Errorf("Load() error = %v, want ErrTransport", err)
			}
		})
	}
}
