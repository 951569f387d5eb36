package handlers

import (
	"encoding/csv"
	"mime"
	"net/http"
	"strings"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/gorilla/mux"
)

var csvHeader = []string{"Name", "Email", "Phone", "Response", "RSVP date", "Confirmation"}

// formatRSVPForCSV converts an RSVP to one CSV record. confirmations maps RSVP ids to
// the ledger status of their confirmation.
func formatRSVPForCSV(r backend.RSVP, confirmations map[string]string) []string {
	response := "Not going"
	if r.Response == backend.ResponseGoing {
		response = "Going"
	}

	created := "-"
	if !r.CreatedAt.IsZero() {
		created = r.CreatedAt.Format("2006-01-02 15:04")
	}

	confirmation := "-"
	if status, ok := confirmations[r.ID]; ok {
		confirmation = status
	}

	return []string{
		r.Name,
		r.Email,
		orDash(r.Phone),
		response,
		created,
		confirmation,
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// writeCSVHeaders sets HTTP headers and the UTF-8 BOM Excel needs
func writeCSVHeaders(w http.ResponseWriter, eventID string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "rsvps-" + eventID + ".csv"}))
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})
}

// HandleDownloadCSV exports one event's RSVPs to CSV
func HandleDownloadCSV(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := mux.Vars(r)["id"]
		rsvps, err := s.GetBackend().ListRSVPs(r.Context(), eventID)
		if err != nil {
			s.GetLogger().Error().Err(err).Str("event_id", eventID).Msg("Failed to load RSVPs for export")
			http.Error(w, "Failed to load RSVPs", http.StatusBadGateway)
			return
		}

		// Ledger status is optional decoration; a failure only drops the column's data.
		statuses := map[string]string{}
		if db := s.GetDB(); db != nil {
			if rows, err := db.ListConfirmationsByEvent(eventID); err == nil {
				for _, c := range rows {
					if _, seen := statuses[c.RSVPID]; !seen || c.Status == database.StatusSent {
						statuses[c.RSVPID] = c.Status
					}
				}
			}
		}

		writeCSVHeaders(w, eventID)
		cw := csv.NewWriter(w)
		_ = cw.Write(csvHeader)
		for _, rv := range rsvps {
			_ = cw.Write(formatRSVPForCSV(rv, statuses))
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			s.GetLogger().Error().Err(err).Msg("Failed to write CSV")
		}
	}
}
