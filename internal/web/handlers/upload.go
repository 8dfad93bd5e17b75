package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/kozaktomas/image-collage/internal/constants"
)

// UploadStore persists uploaded source images.
type UploadStore interface {
	SaveUpload(originalName string, r io.Reader) (string, error)
	RemoveSources(paths []string)
}

// UploadHandler handles file upload endpoints.
type UploadHandler struct {
	store  UploadStore
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(store UploadStore, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{
		store:  store,
		logger: logger,
	}
}

// saveUploadedFiles stores multipart files and returns their paths.
func (h *UploadHandler) saveUploadedFiles(files []*multipart.FileHeader) ([]string, error) {
	filePaths := make([]string, 0, len(files))
	for _, fileHeader := range files {
		if err := func() error {
			file, err := fileHeader.Open()
			if err != nil {
				return fmt.Errorf("failed to open file: %s", fileHeader.Filename)
			}
			defer file.Close()

			path, err := h.store.SaveUpload(fileHeader.Filename, file)
			if err != nil {
				h.logger.Error("failed to store upload", "file", sanitizeForLog(fileHeader.Filename), "error", err)
				return fmt.Errorf("failed to save file: %s", fileHeader.Filename)
			}

			filePaths = append(filePaths, path)
			return nil
		}(); err != nil {
			return filePaths, err
		}
	}
	return filePaths, nil
}

// Upload handles multipart image uploads.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[constants.UploadFormField]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}
	if len(files) > constants.MaxUploadFiles {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("too many files: %d (maximum %d)", len(files), constants.MaxUploadFiles))
		return
	}

	filePaths, err := h.saveUploadedFiles(files)
	if err != nil {
		h.store.RemoveSources(filePaths)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("stored uploads", "count", len(filePaths))
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"files":   filePaths,
	})
}
