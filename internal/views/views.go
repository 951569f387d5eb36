// Package views renders the dashboard pages as templ components.
//
//go:generate templ generate
package views

import (
	"fmt"
	"net/url"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/config"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/notify"
)

// Chrome is what every page shares: language, themes, the signed-in admin and the
// flashes collected since the last render.
type Chrome struct {
	Title   string
	Lang    i18n.Language
	Themes  config.ThemeConfig
	User    string
	Flashes []notify.Notification
}

var confirmationFilters = []string{database.StatusFailed, database.StatusSent, ""}

func alertClass(l notify.Level) string {
	switch l {
	case notify.Success:
		return "alert-success"
	case notify.Error:
		return "alert-error"
	default:
		return "alert-info"
	}
}

func formatDate(lang i18n.Language, t *time.Time) string {
	if t == nil || t.IsZero() {
		return i18n.T(lang, "not_specified")
	}
	return t.Format("January 02, 2006")
}

// inputDate renders t for a datetime-local input.
func inputDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

func formTitle(lang i18n.Language, id string) string {
	if id == "" {
		return i18n.T(lang, "add_event")
	}
	return i18n.T(lang, "edit_event")
}

// eventPath is /events, /events/{id} or /events/{id}/{action}.
func eventPath(id, action string) string {
	p := "/events"
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	if action != "" {
		p += "/" + action
	}
	return p
}

func similarity(s float64) string {
	return fmt.Sprintf("%.0f%%", s*100)
}

func filterLabel(status string) string {
	if status == "" {
		return "all"
	}
	return status
}
