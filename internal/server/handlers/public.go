package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/config"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/gallery"
	"github.com/AlexTLDR/eventdeck/internal/geocode"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/views"
	"github.com/a-h/templ"
	"github.com/rs/zerolog"
)

// Server interface defines the methods needed by handlers
type Server interface {
	GetDB() *database.DB
	GetConfig() *config.Config
	GetBackend() *backend.Client
	GetMailer() mailer.Sender
	GetGeocoder() *geocode.Geocoder
	GetGallery() *gallery.Controller
	GetLogger() *zerolog.Logger
	GetCurrentUser(r *http.Request) (string, string)

	// Flash keeps notifications for the next page render.
	Flash(w http.ResponseWriter, r *http.Request, notes ...notify.Notification)
	// Chrome pops pending flashes and returns the shared page data.
	Chrome(w http.ResponseWriter, r *http.Request, title string) views.Chrome
}

// HandleHome sends visitors to the event list.
func HandleHome(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/events", http.StatusSeeOther)
	}
}

// HandleHealth reports whether the confirmation ledger is reachable.
func HandleHealth(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if db := s.GetDB(); db == nil || db.PingContext(ctx) != nil {
			s.GetLogger().Error().Msg("Database health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": "database connection failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// render writes body inside the layout with status.
func render(s Server, w http.ResponseWriter, r *http.Request, status int, chrome views.Chrome, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.Layout(chrome, body).Render(r.Context(), w); err != nil {
		s.GetLogger().Error().Err(err).Str("path", r.URL.Path).Msg("Failed to render page")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes {"error": msg}.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
