package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LIST_PAGE_SIZE", "")
	t.Setenv("UPLOAD_EVICT_DELAY", "")
	t.Setenv("MAIL_PROVIDER", "")
	t.Setenv("BACKEND_URL", "http://backend:8000/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListPageSize != 1000 {
		t.Errorf("ListPageSize = %d, want 1000", cfg.ListPageSize)
	}
	if cfg.UploadEvictDelay != 2*time.Second {
		t.Errorf("UploadEvictDelay = %v, want 2s", cfg.UploadEvictDelay)
	}
	if cfg.MailProvider != MailProviderEmailJS {
		t.Errorf("MailProvider = %q, want %q", cfg.MailProvider, MailProviderEmailJS)
	}
	if cfg.BackendURL != "http://backend:8000" {
		t.Errorf("BackendURL = %q, trailing slash not trimmed", cfg.BackendURL)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric page size", key: "LIST_PAGE_SIZE", value: "lots"},
		{name: "zero page size", key: "LIST_PAGE_SIZE", value: "0"},
		{name: "bad evict delay", key: "UPLOAD_EVICT_DELAY", value: "two seconds"},
		{name: "unknown mail provider", key: "MAIL_PROVIDER", value: "pigeon"},
		{name: "bad smtp port", key: "SMTP_PORT", value: "tls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q: expected error, got none", tt.key, tt.value)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " ops@example.com , Host@Example.com,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Fatalf("AdminEmails = %v, want 2 entries", cfg.AdminEmails)
	}
	if !cfg.IsAdmin("host@example.com") {
		t.Error("expected case-insensitive admin match")
	}
	if cfg.IsAdmin("guest@example.com") {
		t.Error("guest must not be an admin")
	}
}

func TestParseThemesFromCSS(t *testing.T) {
	css := `@plugin "daisyui" { themes: cupcake --default, dracula --prefersdark; }`
	themes, ok := parseThemesFromCSS(css)
	if !ok {
		t.Fatal("expected themes to parse")
	}
	if themes.Light != "cupcake" || themes.Dark != "dracula" {
		t.Errorf("got %+v", themes)
	}

	if _, ok := parseThemesFromCSS("body { color: red; }"); ok {
		t.Error("expected no match for unrelated CSS")
	}
}
