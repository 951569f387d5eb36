package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/gallery"
	"github.com/AlexTLDR/eventdeck/internal/i18n"
	"github.com/AlexTLDR/eventdeck/internal/views"
)

// readFiles loads every file posted under field.
func readFiles(r *http.Request, field string) ([]backend.File, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	var files []backend.File
	for _, header := range r.MultipartForm.File[field] {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		files = append(files, backend.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// HandleGallery refreshes the collection and renders the gallery
func HandleGallery(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := s.GetGallery()
		if tab := r.URL.Query().Get("tab"); tab != "" {
			g.SetTab(gallery.Tab(tab))
		}
		_ = g.Refresh(r.Context())

		chrome := s.Chrome(w, r, i18n.T(i18n.GetLanguageFromRequest(r), "gallery"))
		chrome.Flashes = append(chrome.Flashes, g.Notifications()...)
		render(s, w, r, http.StatusOK, chrome, views.Gallery(chrome.Lang, g.Snapshot()))
	}
}

// HandleGalleryUpload starts one upload per posted file and returns immediately
func HandleGalleryUpload(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := readFiles(r, "files")
		if err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}
		s.GetGallery().Upload(r.Context(), files)
		http.Redirect(w, r, "/gallery", http.StatusSeeOther)
	}
}

// HandleGallerySearch runs a face search with the first posted file
func HandleGallerySearch(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files, err := readFiles(r, "files")
		if err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}
		_ = s.GetGallery().Search(r.Context(), files)
		http.Redirect(w, r, "/gallery", http.StatusSeeOther)
	}
}
