package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// ArtifactLocator finds published collages in the durable store.
type ArtifactLocator interface {
	ArtifactPath(name string) (string, error)
}

// FilesHandler serves published collages.
type FilesHandler struct {
	locator ArtifactLocator
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(locator ArtifactLocator) *FilesHandler {
	return &FilesHandler{locator: locator}
}

// Download streams a collage as an attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	f, info, ok := h.open(w, filename)
	if !ok {
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// Preview serves a collage inline for the browser.
func (h *FilesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	f, info, ok := h.open(w, filename)
	if !ok {
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (h *FilesHandler) open(w http.ResponseWriter, filename string) (*os.File, os.FileInfo, bool) {
	path, err := h.locator.ArtifactPath(filename)
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return nil, nil, false
	}
	f, err := os.Open(path) //nolint:gosec // path validated by the locator
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return nil, nil, false
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return nil, nil, false
	}
	return f, info, true
}
