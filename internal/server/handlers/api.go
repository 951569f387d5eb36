package handlers

import (
	"errors"
	"net/http"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/views"
	"github.com/gorilla/mux"
)

// HandleAPIEvents returns the events matching ?q= as JSON, or as the table fragment
// when ?format=html.
func HandleAPIEvents(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &notify.Recorder{}
		events, err := eventList(s, rec).Fetch(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			WriteJSONError(w, http.StatusBadGateway, fetchFailed(rec))
			return
		}

		if r.URL.Query().Get("format") == "html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			lang := i18n.GetLanguageFromRequest(r)
			if err := views.EventRows(lang, events).Render(r.Context(), w); err != nil {
				s.GetLogger().Error().Err(err).Msg("Failed to render event rows")
			}
			return
		}

		if events == nil {
			events = []backend.Event{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

func fetchFailed(rec *notify.Recorder) string {
	if notes := rec.Drain(); len(notes) > 0 {
		return notes[0].Message
	}
	return "Failed to fetch events"
}

// HandleAPIDeleteEvent deletes one event and reports the outcome as JSON
func HandleAPIDeleteEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &notify.Recorder{}
		err := eventList(s, rec).Delete(r.Context(), mux.Vars(r)["id"])

		var msg string
		if notes := rec.Drain(); len(notes) > 0 {
			msg = notes[0].Message
		}
		if err != nil {
			status := http.StatusBadGateway
			var rejected *backend.RejectedError
			if errors.As(err, &rejected) {
				status = http.StatusConflict
			}
			WriteJSONError(w, status, msg)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

// HandleAPIGallery returns the gallery state. Notifications stay queued for the
// next page render.
func HandleAPIGallery(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.GetGallery().Snapshot())
	}
}
