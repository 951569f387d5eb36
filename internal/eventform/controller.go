package eventform

import (
	"context"
	"errors"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/rs/zerolog"
)

const saveFailedMessage = "Failed to save event"

// Backend is the part of the backend client the form needs.
type Backend interface {
	CreateEvent(ctx context.Context, p backend.EventPayload) (backend.Result, error)
	UpdateEvent(ctx context.Context, id string, p backend.EventPayload) (backend.Result, error)
}

type Controller struct {
	backend  Backend
	notifier notify.Notifier
	log      zerolog.Logger
}

func New(b Backend, n notify.Notifier, log zerolog.Logger) *Controller {
	return &Controller{backend: b, notifier: n, log: log}
}

// Submit creates the event when id is empty and replaces it otherwise. Every outcome
// is notified; on error the caller keeps the form populated for another attempt.
func (c *Controller) Submit(ctx context.Context, id string, f *Form) error {
	payload, err := f.Payload()
	if err != nil {
		c.notifier.Notify(notify.Error, err.Error())
		return err
	}

	var res backend.Result
	if id == "" {
		res, err = c.backend.CreateEvent(ctx, payload)
	} else {
		res, err = c.backend.UpdateEvent(ctx, id, payload)
	}

	if err != nil {
		var rejected *backend.RejectedError
		if errors.As(err, &rejected) {
			c.notifier.Notify(notify.Error, rejected.Error())
		} else {
			c.log.Error().Err(err).Str("event_id", id).Msg("Failed to save event")
			c.notifier.Notify(notify.Error, saveFailedMessage)
		}
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = "Event saved"
	}
	c.notifier.Notify(notify.Success, msg)
	return nil
}
