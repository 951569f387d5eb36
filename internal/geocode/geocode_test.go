package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		location string
		status   int
		body     string
		wantOK   bool
		wantLat  float64
	}{
		{
			name:     "first match wins",
			location: "Shivaji Park, Mumbai",
			status:   http.StatusOK,
			body:     `[{"lat":"19.0269","lon":"72.8387","display_name":"Shivaji Park"},{"lat":"1","lon":"2"}]`,
			wantOK:   true,
			wantLat:  19.0269,
		},
		{name: "no match", location: "Atlantis", status: http.StatusOK, body: `[]`},
		{name: "server error", location: "Mumbai", status: http.StatusBadGateway, body: `bad`},
		{name: "garbage coordinates", location: "Mumbai", status: http.StatusOK, body: `[{"lat":"north","lon":"east"}]`},
		{name: "empty location", location: "  ", status: http.StatusOK, body: `[{"lat":"1","lon":"2"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != "eventdeck-test" {
					t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
				}
				if r.URL.Query().Get("format") != "json" {
					t.Errorf("format = %q", r.URL.Query().Get("format"))
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := New(srv.URL, "eventdeck-test", "", srv.Client(), zerolog.Nop())
			p, ok := g.Lookup(context.Background(), tt.location)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && p.Lat != tt.wantLat {
				t.Errorf("Lat = %v, want %v", p.Lat, tt.wantLat)
			}
		})
	}
}

func TestLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	g := New(srv.URL, "eventdeck-test", "", nil, zerolog.Nop())
	if _, ok := g.Lookup(context.Background(), "Mumbai"); ok {
		t.Error("expected no point when the service is unreachable")
	}
}
