package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type eventList struct {
	Events []Event `json:"events"`
}

type eventEnvelope struct {
	Result
	Data *Event `json:"data"`
}

// ListEvents fetches one page of events, optionally filtered by a free-text search.
func (c *Client) ListEvents(ctx context.Context, search string, page, limit int) ([]Event, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out eventList
	if err := c.doJSON(ctx, http.MethodGet, "/api/events", q, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out.Events, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var out eventEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/api/events/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if out.Data == nil {
		if out.Message != "" {
			return nil, fmt.Errorf("failed to get event: %w", &RejectedError{Message: out.Message})
		}
		return nil, fmt.Errorf("failed to get event: %w", &RejectedError{Message: "event not found"})
	}
	return out.Data, nil
}

// CreateEvent creates an event. A backend-reported failure is a *RejectedError.
func (c *Client) CreateEvent(ctx context.Context, p EventPayload) (Result, error) {
	return c.saveEvent(ctx, http.MethodPost, "/api/events", p)
}

// UpdateEvent replaces the event with the given id.
func (c *Client) UpdateEvent(ctx context.Context, id string, p EventPayload) (Result, error) {
	return c.saveEvent(ctx, http.MethodPut, "/api/events/"+url.PathEscape(id), p)
}

// DeleteEvent deletes the event with the given id.
func (c *Client) DeleteEvent(ctx context.Context, id string) (Result, error) {
	var out Result
	if err := c.doJSON(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return Result{}, fmt.Errorf("failed to delete event: %w", err)
	}
	if !out.Success {
		return out, &RejectedError{Message: out.Message}
	}
	return out, nil
}

func (c *Client) saveEvent(ctx context.Context, method, path string, p EventPayload) (Result, error) {
	var out eventEnvelope
	var err error
	if p.Image != nil {
		err = c.doMultipart(ctx, method, path, eventFields(p), "image", p.Image, &out)
	} else {
		err = c.doJSON(ctx, method, path, nil, p, &out)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to save event: %w", err)
	}
	if !out.Success {
		return out.Result, &RejectedError{Message: out.Message}
	}
	return out.Result, nil
}

func eventFields(p EventPayload) map[string]string {
	fields := map[string]string{
		"name":     p.Name,
		"about":    p.About,
		"location": p.Location,
		"venue":    p.Venue,
		"capacity": strconv.Itoa(p.Capacity),
		"scale":    string(p.Scale),
	}
	if p.StartAt != nil {
		fields["startAt"] = p.StartAt.Format(time.RFC3339)
	}
	if p.EndAt != nil {
		fields["endAt"] = p.EndAt.Format(time.RFC3339)
	}
	return fields
}
