// Package eventdetails assembles the read-only details page of one event.
package eventdetails

import (
	"context"
	"fmt"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/geocode"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Backend interface {
	GetEvent(ctx context.Context, id string) (*backend.Event, error)
	ListRSVPs(ctx context.Context, eventID string) ([]backend.RSVP, error)
}

type Geocoder interface {
	Lookup(ctx context.Context, location string) (geocode.Point, bool)
}

// Details is everything the page renders. Point is nil when the location could not
// be placed on the map.
type Details struct {
	Event    *backend.Event
	RSVPs    []backend.RSVP
	Going    int
	NotGoing int
	Point    *geocode.Point
}

type Loader struct {
	backend  Backend
	geocoder Geocoder
	log      zerolog.Logger
}

func New(b Backend, g Geocoder, log zerolog.Logger) *Loader {
	return &Loader{backend: b, geocoder: g, log: log}
}

// Load fetches the event and its RSVPs concurrently; both must succeed. The map
// point is best-effort and its failure is never returned.
func (l *Loader) Load(ctx context.Context, id string) (*Details, error) {
	var (
		event *backend.Event
		rsvps []backend.RSVP
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = l.backend.GetEvent(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		rsvps, err = l.backend.ListRSVPs(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		l.log.Error().Err(err).Str("event_id", id).Msg("Failed to load event details")
		return nil, fmt.Errorf("failed to load event details: %w", err)
	}

	d := &Details{Event: event, RSVPs: rsvps}
	for _, r := range rsvps {
		if r.Response == backend.ResponseGoing {
			d.Going++
		} else {
			d.NotGoing++
		}
	}

	if l.geocoder != nil && event.Location != "" {
		if p, ok := l.geocoder.Lookup(ctx, event.Location); ok {
			d.Point = &p
		}
	}
	return d, nil
}
