// Package backend is a typed client for the event backend's REST API.
//
// Every call is a single attempt: there are no retries and no client-side timeout
// beyond what the transport and the caller's context impose.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/rs/zerolog"
)

// ErrTransport wraps every failure to reach the backend or read its reply.
var ErrTransport = errors.New("backend unreachable")

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s returned status %d", e.Method, e.Path, e.Code)
}

// RejectedError is a logical failure reported by the backend (success=false).
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request rejected by backend"
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a client for baseURL. A nil httpClient uses a client with no timeout.
func New(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     log.With().Str("component", "backend").Logger(),
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, query, "application/json", reader, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, fileField string, file *File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, method, path, nil, mw.FormDataContentType(), &buf, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("Backend request failed")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A JSON envelope with success=false is a logical failure, not a transport one.
		var result Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.Success && result.Message != "" {
			return &RejectedError{Message: result.Message}
		}
		c.log.Error().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("Backend returned error")
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("Failed to decode backend response")
		return fmt.Errorf("%w: failed to decode response: %w", ErrTransport, err)
	}
	return nil
}
