package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/config"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/rs/zerolog"
)

const adminEmail = "admin@example.com"

// fakeAPI is an in-memory stand-in for the REST backend.
type fakeAPI struct {
	mu       sync.Mutex
	rsvps    []map[string]any
	deletes  []string
	searches []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/events":
		f.searches = append(f.searches, r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{"events":[{"_id":"ev1","name":"Diwali Mela","location":"Mumbai","capacity":250,"scale":"public"}]}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/events/ev1":
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"ev1","name":"Diwali Mela","location":"Mumbai","startAt":"2026-11-01T18:00:00Z"}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/events/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Event not found"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/events":
		_, _ = w.Write([]byte(`{"success":true,"message":"Event created successfully"}`))
	case r.Method == http.MethodDelete && r.URL.Path == "/api/events/ev1":
		f.deletes = append(f.deletes, "ev1")
		_, _ = w.Write([]byte(`{"success":false,"message":"Event has RSVPs"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/rsvps":
		_, _ = w.Write([]byte(`[{"_id":"r1","eventId":"ev1","name":"Asha, Rao","email":"asha@example.com","response":"going"}]`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/rsvps":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rsvps = append(f.rsvps, body)
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"r9","eventId":"ev1","response":"going"}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/images":
		_, _ = w.Write([]byte(`[]`))
	default:
		http.NotFound(w, r)
	}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Confirmation
	err  error
}

func (m *fakeMailer) SendConfirmation(_ context.Context, c mailer.Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return m.err
}

type harness struct {
	srv    *Server
	api    *fakeAPI
	mailer *fakeMailer
	db     *database.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithLog(t, zerolog.Nop())
}

func newHarnessWithLog(t *testing.T, log zerolog.Logger) *harness {
	t.Helper()
	api := &fakeAPI{}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		AdminEmails:      []string{adminEmail},
		SessionSecret:    "test-secret",
		ListPageSize:     1000,
		UploadEvictDelay: 10 * time.Millisecond,
		PhoneRegion:      "IN",
		CORSOrigins:      []string{"*"},
		Themes:           config.ThemeConfig{Light: "emerald", Dark: "night"},
	}
	m := &fakeMailer{}
	srv := New(cfg, Deps{
		DB:      db,
		Backend: backend.New(ts.URL, ts.Client(), zerolog.Nop()),
		Mailer:  m,
		Log:     log,
	})
	return &harness{srv: srv, api: api, mailer: m, db: db}
}

// adminCookie signs in as an admin by writing the session directly.
func (h *harness) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, _ := h.srv.sessionStore.Get(req, authSession)
	session.Values["email"] = adminEmail
	session.Values["name"] = "Admin"
	if err := session.Save(req, rec); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	return rec.Result().Cookies()[0]
}

func (h *harness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/events", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/google" {
		t.Errorf("GET /events = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/events = %d, want 401", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthUnhealthyLogs(t *testing.T) {
	var buf bytes.Buffer
	h := newHarnessWithLog(t, zerolog.New(&buf))
	_ = h.db.Close()

	rec := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "unhealthy") {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(buf.String(), "Database health check failed") {
		t.Errorf("log = %q, want health check failure", buf.String())
	}
}

func TestEventsListAndSearch(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/events?q=diw", nil), cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Diwali Mela") {
		t.Fatalf("GET /events = %d", rec.Code)
	}

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/events?q=diwa", nil), cookie)
	var body struct {
		Events []backend.Event `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || len(body.Events) != 1 {
		t.Fatalf("GET /api/events = %d %v", rec.Code, err)
	}
	if got := h.api.searches; len(got) != 2 || got[1] != "diwa" {
		t.Errorf("searches = %v", got)
	}
}

func TestCreateEventValidationKeepsForm(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(postForm("/events", url.Values{
		"name":     {"Diwali Mela"},
		"about":    {"Lights"},
		"location": {"Mumbai"},
		"venue":    {"Shivaji Park"},
		"capacity": {"lots"},
		"scale":    {"public"},
	}), cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST /events = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="Diwali Mela"`) {
		t.Error("form should be re-rendered with the entered values")
	}
}

func TestCreateEventSuccessFlashes(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(postForm("/events", url.Values{
		"name":     {"Diwali Mela"},
		"about":    {"Lights"},
		"location": {"Mumbai"},
		"venue":    {"Shivaji Park"},
		"capacity": {"250"},
		"scale":    {"public"},
	}), cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/events" {
		t.Fatalf("POST /events = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// The flash rides along to the next page.
	next := httptest.NewRequest(http.MethodGet, "/events", nil)
	next.AddCookie(cookie)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	page := h.do(next)
	if !strings.Contains(page.Body.String(), "Event created successfully") {
		t.Error("success flash not rendered")
	}
}

func TestAPIDeleteRejected(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(httptest.NewRequest(http.MethodDelete, "/api/events/ev1", nil), cookie)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "Event has RSVPs") {
		t.Errorf("DELETE = %d %s", rec.Code, rec.Body.String())
	}
	if len(h.api.deletes) != 1 {
		t.Errorf("deletes = %v", h.api.deletes)
	}
}

func TestRSVPFlow(t *testing.T) {
	t.Run("missing response issues no request", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(postForm("/rsvp/ev1", url.Values{"name": {"Asha"}, "email": {"asha@example.com"}}))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("POST /rsvp = %d", rec.Code)
		}
		if len(h.api.rsvps) != 0 {
			t.Error("no RSVP should reach the backend")
		}
		if !strings.Contains(rec.Body.String(), `value="Asha"`) {
			t.Error("entered values lost")
		}
	})

	t.Run("success redirects and records", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(postForm("/rsvp/ev1", url.Values{
			"name": {"Asha"}, "email": {"asha@example.com"}, "phone": {"9876543210"}, "response": {"going"},
		}))
		if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "submitted=true") {
			t.Fatalf("POST /rsvp = %d %q", rec.Code, rec.Header().Get("Location"))
		}
		if len(h.api.rsvps) != 1 || h.api.rsvps[0]["phone"] != "+919876543210" {
			t.Errorf("rsvps = %v", h.api.rsvps)
		}
		rows, err := h.db.ListConfirmations(database.StatusSent)
		if err != nil || len(rows) != 1 {
			t.Errorf("sent confirmations = %v, %v", rows, err)
		}
	})

	t.Run("confirmation failure surfaces and can be resent", func(t *testing.T) {
		h := newHarness(t)
		h.mailer.err = errors.New("smtp down")

		rec := h.do(postForm("/rsvp/ev1", url.Values{
			"name": {"Asha"}, "email": {"asha@example.com"}, "response": {"going"},
		}))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("POST /rsvp = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Failed to send confirmation email") {
			t.Error("guest should see the confirmation error")
		}
		if len(h.api.rsvps) != 1 {
			t.Errorf("RSVP should still be persisted, got %d", len(h.api.rsvps))
		}

		failed, err := h.db.ListConfirmations(database.StatusFailed)
		if err != nil || len(failed) != 1 {
			t.Fatalf("failed confirmations = %v, %v", failed, err)
		}

		h.mailer.err = nil
		cookie := h.adminCookie(t)
		rec = h.do(httptest.NewRequest(http.MethodPost, "/admin/confirmations/"+failed[0].ID+"/resend", nil), cookie)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("resend = %d", rec.Code)
		}
		c, err := h.db.GetConfirmation(failed[0].ID)
		if err != nil || c.Status != database.StatusSent || c.Attempts != 2 {
			t.Errorf("after resend = %+v, %v", c, err)
		}
		if len(h.mailer.sent) != 2 || h.mailer.sent[1].ResponseStatus != "Accepted" {
			t.Errorf("sent = %+v", h.mailer.sent)
		}
	})

	t.Run("unknown event fails the page", func(t *testing.T) {
		h := newHarness(t)
		rec := h.do(httptest.NewRequest(http.MethodGet, "/rsvp/missing", nil))
		if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "Failed to fetch data") {
			t.Errorf("GET /rsvp/missing = %d", rec.Code)
		}
	})
}

func TestDownloadCSV(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/events/ev1/rsvps.csv", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET csv = %d", rec.Code)
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || params["filename"] != "rsvps-ev1.csv" {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\xEF\xBB\xBF") {
		t.Error("missing UTF-8 BOM")
	}
	if !strings.Contains(body, `"Asha, Rao",asha@example.com,-,Going`) {
		t.Errorf("csv body = %q", body)
	}

	rec = h.do(httptest.NewRequest(http.MethodGet, "/events/ev%201%3B%22x/rsvps.csv", nil), cookie)
	_, params, err = mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || params["filename"] != `rsvps-ev 1;"x.csv` {
		t.Errorf("quoted Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestConfirmationsStatusFilter(t *testing.T) {
	h := newHarness(t)
	cookie := h.adminCookie(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/admin/confirmations?status=bogus", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status = %d, want 400", rec.Code)
	}
	rec = h.do(httptest.NewRequest(http.MethodGet, "/admin/confirmations", nil), cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No failed confirmations") {
		t.Errorf("empty ledger page = %d", rec.Code)
	}
}
