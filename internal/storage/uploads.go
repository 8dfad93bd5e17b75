package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// uploadName builds a unique file name for an uploaded image.
func uploadName(original string, at time.Time) string {
	base := filepath.Base(original)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "image"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%d-%s-%s", at.UnixMilli(), uuid.New().String(), base)
}

// SaveUpload stores r in the upload store and returns the stored path.
func (s *Store) SaveUpload(originalName string, r io.Reader) (string, error) {
	path := filepath.Join(s.dirs.Uploads, uploadName(originalName, time.Now()))
	out, err := os.Create(path) //nolint:gosec // name built from filepath.Base and a uuid
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", err)
	}
	return path, nil
}

// Resolve returns the absolute form of path if it names a file directly
// inside the upload store.
func (s *Store) Resolve(path string) (string, error) {
	if path == "" {
		return "", ErrOutsideUploads
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if filepath.Dir(abs) != s.dirs.Uploads {
		return "", fmt.Errorf("%w: %s", ErrOutsideUploads, path)
	}
	return abs, nil
}
