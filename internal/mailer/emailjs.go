package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// EmailJS sends confirmations through an EmailJS-compatible REST endpoint, keyed by a
// service id, a template id and the public key fixed at process start.
type EmailJS struct {
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	client     *http.Client
	log        zerolog.Logger
}

func NewEmailJS(endpoint, serviceID, templateID, publicKey string, client *http.Client, log zerolog.Logger) *EmailJS {
	if client == nil {
		client = &http.Client{}
	}
	return &EmailJS{
		endpoint:   endpoint,
		serviceID:  serviceID,
		templateID: templateID,
		publicKey:  publicKey,
		client:     client,
		log:        log.With().Str("component", "emailjs").Logger(),
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (m *EmailJS) SendConfirmation(ctx context.Context, c Confirmation) error {
	if m.serviceID == "" || m.templateID == "" || m.publicKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      m.serviceID,
		TemplateID:     m.templateID,
		UserID:         m.publicKey,
		TemplateParams: c.Params(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Error().Err(err).Str("to", c.ToEmail).Msg("Failed to send confirmation")
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		m.log.Error().Int("status", resp.StatusCode).Str("to", c.ToEmail).Msg("Confirmation service returned error")
		return fmt.Errorf("confirmation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	m.log.Debug().Str("to", c.ToEmail).Str("event", c.EventName).Msg("Confirmation sent")
	return nil
}
