package database

import (
	"errors"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newConfirmation(rsvpID, eventID string) *Confirmation {
	return &Confirmation{
		RSVPID:        rsvpID,
		EventID:       eventID,
		EventName:     "Diwali Mela",
		EventDate:     "November 01, 2026",
		EventLocation: "Shivaji Park",
		GuestName:     "Asha",
		Email:         "asha@example.com",
		Phone:         "+919876543210",
		Response:      "going",
	}
}

func TestRecordConfirmation(t *testing.T) {
	db := setupTestDB(t)

	sent, err := db.RecordConfirmation(newConfirmation("r1", "e1"), nil)
	if err != nil {
		t.Fatalf("RecordConfirmation() error = %v", err)
	}
	if sent.ID == "" || sent.Status != StatusSent || sent.Error.Valid {
		t.Errorf("sent = %+v", sent)
	}

	failed, err := db.RecordConfirmation(newConfirmation("r2", "e1"), errors.New("smtp down"))
	if err != nil {
		t.Fatalf("RecordConfirmation() error = %v", err)
	}

	got, err := db.GetConfirmation(failed.ID)
	if err != nil {
		t.Fatalf("GetConfirmation() error = %v", err)
	}
	if got.Status != StatusFailed || got.Error.String != "smtp down" || got.Attempts != 1 {
		t.Errorf("got = %+v", got)
	}
	if got.EventName != "Diwali Mela" || got.Phone != "+919876543210" {
		t.Errorf("fields not round-tripped: %+v", got)
	}
}

func TestListConfirmations(t *testing.T) {
	db := setupTestDB(t)

	mustRecord := func(rsvpID, eventID string, sendErr error) {
		t.Helper()
		if _, err := db.RecordConfirmation(newConfirmation(rsvpID, eventID), sendErr); err != nil {
			t.Fatalf("RecordConfirmation() error = %v", err)
		}
	}
	mustRecord("r1", "e1", nil)
	mustRecord("r2", "e1", errors.New("boom"))
	mustRecord("r3", "e2", errors.New("boom"))

	tests := []struct {
		name   string
		status string
		want   int
	}{
		{name: "all", status: "", want: 3},
		{name: "failed", status: StatusFailed, want: 2},
		{name: "sent", status: StatusSent, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := db.ListConfirmations(tt.status)
			if err != nil {
				t.Fatalf("ListConfirmations() error = %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("got %d confirmations, want %d", len(list), tt.want)
			}
		})
	}

	byEvent, err := db.ListConfirmationsByEvent("e1")
	if err != nil {
		t.Fatalf("ListConfirmationsByEvent() error = %v", err)
	}
	if len(byEvent) != 2 {
		t.Errorf("got %d confirmations for e1, want 2", len(byEvent))
	}
}

func TestMarkAttempt(t *testing.T) {
	db := setupTestDB(t)

	c, err := db.RecordConfirmation(newConfirmation("r1", "e1"), errors.New("timeout"))
	if err != nil {
		t.Fatalf("RecordConfirmation() error = %v", err)
	}

	if err := db.MarkAttempt(c.ID, nil); err != nil {
		t.Fatalf("MarkAttempt() error = %v", err)
	}

	got, err := db.GetConfirmation(c.ID)
	if err != nil {
		t.Fatalf("GetConfirmation() error = %v", err)
	}
	if got.Status != StatusSent || got.Error.Valid || got.Attempts != 2 {
		t.Errorf("got = %+v", got)
	}

	if err := db.MarkAttempt("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := db.GetConfirmation("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{"postgres://u:p@localhost/db", "postgres", "postgres://u:p@localhost/db"},
		{"postgresql://localhost/db", "postgres", "postgresql://localhost/db"},
		{"sqlite://./eventdeck.db", "sqlite3", "./eventdeck.db"},
		{":memory:", "sqlite3", ":memory:"},
	}
	for _, tt := range tests {
		driver, _, dsn := resolveDriver(tt.url)
		if driver != tt.wantDriver || dsn != tt.wantDSN {
			t.Errorf("resolveDriver(%q) = %q, %q", tt.url, driver, dsn)
		}
	}
}
