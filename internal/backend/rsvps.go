package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type rsvpEnvelope struct {
	Result
	Data *RSVP `json:"data"`
}

// ListRSVPs returns the RSVPs recorded for one event.
func (c *Client) ListRSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	q := url.Values{}
	q.Set("eventId", eventID)

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/rsvps", q, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}

	// The backend has answered with both a bare array and {"rsvps": [...]}.
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var rsvps []RSVP
		if err := json.Unmarshal(raw, &rsvps); err != nil {
			return nil, fmt.Errorf("failed to decode rsvps: %w", err)
		}
		return rsvps, nil
	}

	var wrapped struct {
		RSVPs []RSVP `json:"rsvps"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode rsvps: %w", err)
	}
	return wrapped.RSVPs, nil
}

// CreateRSVP persists one guest response. A backend-reported failure is a *RejectedError.
func (c *Client) CreateRSVP(ctx context.Context, p RSVPPayload) (*RSVP, error) {
	var out rsvpEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/api/rsvps", nil, p, &out); err != nil {
		return nil, fmt.Errorf("failed to create rsvp: %w", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "Failed to submit RSVP"
		}
		return nil, &RejectedError{Message: msg}
	}
	if out.Data == nil {
		// Older backends only acknowledge; keep what was sent.
		return &RSVP{
			EventID:  p.EventID,
			Name:     p.Name,
			Email:    p.Email,
			Phone:    p.Phone,
			Response: p.Response,
		}, nil
	}
	return out.Data, nil
}
