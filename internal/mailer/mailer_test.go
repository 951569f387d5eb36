package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var sample = Confirmation{
	ToName:         "Asha",
	ToEmail:        "asha@example.com",
	EventName:      "Diwali Mela",
	EventDate:      "November 01, 2026",
	EventLocation:  "Shivaji Park",
	ResponseStatus: "Accepted",
}

func TestEmailJSSendConfirmation(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	m := NewEmailJS(srv.URL, "service_x", "template_y", "public_z", srv.Client(), zerolog.Nop())
	if err := m.SendConfirmation(context.Background(), sample); err != nil {
		t.Fatalf("SendConfirmation() error = %v", err)
	}

	if got.ServiceID != "service_x" || got.TemplateID != "template_y" || got.UserID != "public_z" {
		t.Errorf("ids = %+v", got)
	}
	if got.TemplateParams["response_status"] != "Accepted" || got.TemplateParams["to_email"] != "asha@example.com" {
		t.Errorf("params = %v", got.TemplateParams)
	}
}

func TestEmailJSFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("The template ID is invalid"))
	}))
	defer srv.Close()

	m := NewEmailJS(srv.URL, "s", "t", "k", srv.Client(), zerolog.Nop())
	err := m.SendConfirmation(context.Background(), sample)
	if err == nil || !strings.Contains(err.Error(), "template ID is invalid") {
		t.Errorf("expected service error, got %v", err)
	}

	unconfigured := NewEmailJS(srv.URL, "", "", "", nil, zerolog.Nop())
	if err := unconfigured.SendConfirmation(context.Background(), sample); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSendConfirmation(t *testing.T) {
	d := &fakeDialer{}
	m := NewSMTPWithDialer(d, "events@example.com")

	if err := m.SendConfirmation(context.Background(), sample); err != nil {
		t.Fatalf("SendConfirmation() error = %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(d.sent))
	}
	if subj := d.sent[0].GetHeader("Subject"); len(subj) != 1 || subj[0] != "RSVP Accepted: Diwali Mela" {
		t.Errorf("Subject = %v", subj)
	}

	d.err = errors.New("connection refused")
	if err := m.SendConfirmation(context.Background(), sample); err == nil {
		t.Error("expected dial error to surface")
	}
}

func TestConfirmationHTMLEscapes(t *testing.T) {
	c := sample
	c.ToName = "<script>"
	if body := confirmationHTML(c); strings.Contains(body, "<script>") {
		t.Error("guest name must be escaped")
	}
}
