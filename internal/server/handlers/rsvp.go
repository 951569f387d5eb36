package handlers

import (
	"net/http"

	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/rsvp"
	"github.com/AlexTLDR/eventdeck/internal/views"
	"github.com/gorilla/mux"
)

// newRSVPPage builds a page whose notifications land in rec.
func newRSVPPage(s Server, eventID string, rec *notify.Recorder) *rsvp.Page {
	var ledger rsvp.Ledger
	if db := s.GetDB(); db != nil {
		ledger = db
	}
	return rsvp.New(eventID, rsvp.Deps{
		Backend:     s.GetBackend(),
		Mailer:      s.GetMailer(),
		Ledger:      ledger,
		Notifier:    rec,
		PhoneRegion: s.GetConfig().PhoneRegion,
		Log:         *s.GetLogger(),
	})
}

// HandleRSVP renders the guest RSVP page
func HandleRSVP(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := newRSVPPage(s, mux.Vars(r)["id"], &notify.Recorder{})

		status := http.StatusOK
		if err := page.Load(r.Context()); err != nil {
			status = http.StatusBadGateway
		}

		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "rsvp"))
		render(s, w, r, status, chrome, views.RSVPPage(chrome.Lang, page, r.URL.Query().Get("submitted") != ""))
	}
}

// HandleRSVPSubmit processes RSVP form submissions
func HandleRSVPSubmit(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := mux.Vars(r)["id"]
		rec := &notify.Recorder{}
		page := newRSVPPage(s, eventID, rec)

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		if err := page.Load(r.Context()); err != nil {
			chrome := s.Chrome(w, r, "RSVP")
			render(s, w, r, http.StatusBadGateway, chrome, views.RSVPPage(chrome.Lang, page, false))
			return
		}

		err := page.Submit(r.Context(), rsvp.Form{
			Name:     r.FormValue("name"),
			Email:    r.FormValue("email"),
			Phone:    r.FormValue("phone"),
			Response: r.FormValue("response"),
		})
		if err != nil {
			// Re-render with the guest's input intact.
			chrome := s.Chrome(w, r, "RSVP")
			chrome.Flashes = append(chrome.Flashes, rec.Drain()...)
			render(s, w, r, http.StatusUnprocessableEntity, chrome, views.RSVPPage(chrome.Lang, page, false))
			return
		}

		s.Flash(w, r, rec.Drain()...)
		http.Redirect(w, r, "/rsvp/"+eventID+"?submitted=true", http.StatusSeeOther)
	}
}
