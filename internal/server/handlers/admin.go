package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/eventdetails"
	"github.com/AlexTLDR/eventdeck/internal/eventform"
	"github.com/AlexTLDR/eventdeck/internal/eventlist"
	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/notify"
	"github.com/AlexTLDR/eventdeck/internal/rsvp"
	"github.com/AlexTLDR/eventdeck/internal/views"
	"github.com/gorilla/mux"
)

const (
	maxUploadMemory = 32 << 20
	formDateLayout  = "2006-01-02T15:04"
)

func eventList(s Server, n notify.Notifier) *eventlist.Controller {
	return eventlist.New(s.GetBackend(), n, s.GetConfig().ListPageSize, *s.GetLogger())
}

// parseDate reads a datetime-local value; empty means unset.
func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(formDateLayout, v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return &t, nil
}

// readFile loads one multipart file into memory.
func readFile(r *http.Request, field string) (*backend.File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &backend.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseEventForm reads the event form from a urlencoded or multipart request.
func parseEventForm(r *http.Request) (eventform.Form, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return eventform.Form{}, fmt.Errorf("failed to parse form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return eventform.Form{}, fmt.Errorf("failed to parse form: %w", err)
	}

	f := eventform.Form{
		Name:     r.FormValue("name"),
		About:    r.FormValue("about"),
		Location: r.FormValue("location"),
		Venue:    r.FormValue("venue"),
		Capacity: r.FormValue("capacity"),
		Scale:    r.FormValue("scale"),
	}

	var err error
	if f.StartAt, err = parseDate(r.FormValue("startAt")); err != nil {
		return f, err
	}
	if f.EndAt, err = parseDate(r.FormValue("endAt")); err != nil {
		return f, err
	}
	if r.MultipartForm != nil {
		if f.Image, err = readFile(r, "image"); err != nil {
			return f, err
		}
	}
	return f, nil
}

// HandleEvents lists events matching ?q=
func HandleEvents(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &notify.Recorder{}
		query := r.URL.Query().Get("q")

		events, err := eventList(s, rec).Fetch(r.Context(), query)
		status := http.StatusOK
		if err != nil {
			status = http.StatusBadGateway
		}

		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "events"))
		chrome.Flashes = append(chrome.Flashes, rec.Drain()...)
		render(s, w, r, status, chrome, views.EventsList(chrome.Lang, query, events))
	}
}

// HandleNewEvent shows the new event form
func HandleNewEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "add_event"))
		render(s, w, r, http.StatusOK, chrome, views.EventForm(chrome.Lang, "", eventform.Form{Scale: "public"}))
	}
}

// HandleEditEvent pre-fills the form from the backend's current copy
func HandleEditEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		event, err := s.GetBackend().GetEvent(r.Context(), id)
		if err != nil {
			s.GetLogger().Error().Err(err).Str("event_id", id).Msg("Failed to load event for edit")
			s.Flash(w, r, notify.Notification{Level: notify.Error, Message: "Failed to fetch event"})
			http.Redirect(w, r, "/events", http.StatusSeeOther)
			return
		}

		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "edit_event"))
		render(s, w, r, http.StatusOK, chrome, views.EventForm(chrome.Lang, id, eventform.FromEvent(*event)))
	}
}

// HandleCreateEvent submits a new event
func HandleCreateEvent(s Server) http.HandlerFunc {
	return saveEvent(s, func(*http.Request) string { return "" })
}

// HandleUpdateEvent replaces an existing event
func HandleUpdateEvent(s Server) http.HandlerFunc {
	return saveEvent(s, func(r *http.Request) string { return mux.Vars(r)["id"] })
}

func saveEvent(s Server, idOf func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idOf(r)
		form, err := parseEventForm(r)
		if err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}

		rec := &notify.Recorder{}
		if err := eventform.New(s.GetBackend(), rec, *s.GetLogger()).Submit(r.Context(), id, &form); err != nil {
			status := http.StatusBadGateway
			var verrs eventform.ValidationErrors
			if errors.As(err, &verrs) {
				status = http.StatusUnprocessableEntity
			}

			// The form stays populated for another attempt.
			chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "events"))
			chrome.Flashes = append(chrome.Flashes, rec.Drain()...)
			render(s, w, r, status, chrome, views.EventForm(chrome.Lang, id, form))
			return
		}

		s.Flash(w, r, rec.Drain()...)
		http.Redirect(w, r, "/events", http.StatusSeeOther)
	}
}

// HandleDeleteEvent deletes one event and returns to the list
func HandleDeleteEvent(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &notify.Recorder{}
		_ = eventList(s, rec).Delete(r.Context(), mux.Vars(r)["id"])
		s.Flash(w, r, rec.Drain()...)
		http.Redirect(w, r, "/events", http.StatusSeeOther)
	}
}

// HandleEventDetails shows one event with its RSVPs and map
func HandleEventDetails(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var geocoder eventdetails.Geocoder
		if g := s.GetGeocoder(); g != nil {
			geocoder = g
		}

		d, err := eventdetails.New(s.GetBackend(), geocoder, *s.GetLogger()).Load(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.Flash(w, r, notify.Notification{Level: notify.Error, Message: "Failed to fetch data"})
			http.Redirect(w, r, "/events", http.StatusSeeOther)
			return
		}

		tileURL := ""
		if g := s.GetGeocoder(); g != nil {
			tileURL = g.TileURL()
		}
		chrome := s.Chrome(w, r, d.Event.Name)
		render(s, w, r, http.StatusOK, chrome, views.EventDetails(chrome.Lang, d, tileURL))
	}
}

// HandleConfirmations lists ledger rows, failed ones by default
func HandleConfirmations(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := database.StatusFailed
		if v, ok := r.URL.Query()["status"]; ok {
			status = v[0]
		}
		if status != "" && status != database.StatusFailed && status != database.StatusSent {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}

		rows, err := s.GetDB().ListConfirmations(status)
		if err != nil {
			s.GetLogger().Error().Err(err).Msg("Failed to list confirmations")
			http.Error(w, "Failed to load confirmations", http.StatusInternalServerError)
			return
		}

		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "confirmations"))
		render(s, w, r, http.StatusOK, chrome, views.Confirmations(chrome.Lang, status, rows))
	}
}

// HandleResendConfirmation retries one confirmation on an admin's request
func HandleResendConfirmation(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		c, err := s.GetDB().GetConfirmation(id)
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Confirmation not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to load confirmation", http.StatusInternalServerError)
			return
		}

		sendErr := s.GetMailer().SendConfirmation(r.Context(), mailer.Confirmation{
			ToName:         c.GuestName,
			ToEmail:        c.Email,
			EventName:      c.EventName,
			EventDate:      c.EventDate,
			EventLocation:  c.EventLocation,
			ResponseStatus: rsvp.ResponseStatus(backend.Response(c.Response)),
		})
		if err := s.GetDB().MarkAttempt(id, sendErr); err != nil {
			s.GetLogger().Error().Err(err).Str("confirmation_id", id).Msg("Failed to record resend")
		}

		note := notify.Notification{Level: notify.Success, Message: "Confirmation sent to " + c.Email}
		if sendErr != nil {
			s.GetLogger().Warn().Err(sendErr).Str("confirmation_id", id).Msg("Resend failed")
			note = notify.Notification{Level: notify.Error, Message: "Failed to send confirmation email"}
		}
		s.Flash(w, r, note)
		http.Redirect(w, r, "/admin/confirmations", http.StatusSeeOther)
	}
}

