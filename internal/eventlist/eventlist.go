// Package eventlist fetches searchable pages of events and deletes them one at a time.
//
// A fetched slice is a snapshot: Delete never edits it, so a deleted event stays
// visible until the next Fetch.
package eventlist

import (
	"context"
	"errors"
	"strings"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/rs/zerolog"
)

const (
	fetchFailedMessage  = "Failed to fetch events"
	deleteFailedMessage = "Failed to delete event"
)

type Backend interface {
	ListEvents(ctx context.Context, search string, page, limit int) ([]backend.Event, error)
	DeleteEvent(ctx context.Context, id string) (backend.Result, error)
}

type Controller struct {
	backend  Backend
	notifier notify.Notifier
	pageSize int
	log      zerolog.Logger
}

func New(b Backend, n notify.Notifier, pageSize int, log zerolog.Logger) *Controller {
	return &Controller{backend: b, notifier: n, pageSize: pageSize, log: log}
}

// Fetch returns the first page of events matching query. An empty query lists all.
func (c *Controller) Fetch(ctx context.Context, query string) ([]backend.Event, error) {
	events, err := c.backend.ListEvents(ctx, strings.TrimSpace(query), 1, c.pageSize)
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("Failed to fetch events")
		c.notifier.Notify(notify.Error, fetchFailedMessage)
		return nil, err
	}
	return events, nil
}

// Delete issues a single delete request and notifies its outcome.
func (c *Controller) Delete(ctx context.Context, id string) error {
	res, err := c.backend.DeleteEvent(ctx, id)
	if err != nil {
		var rejected *backend.RejectedError
		if errors.As(err, &rejected) && rejected.Message != "" {
			c.notifier.Notify(notify.Error, rejected.Message)
		} else {
			c.log.Error().Err(err).Str("event_id", id).Msg("Failed to delete event")
			c.notifier.Notify(notify.Error, deleteFailedMessage)
		}
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = "Event deleted"
	}
	c.notifier.Notify(notify.Success, msg)
	return nil
}
