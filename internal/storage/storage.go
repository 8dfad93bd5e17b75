// Package storage manages the on-disk stores of the collage service: the
// upload store for source images, the durable output store that downloads
// read from, and the preview store that is served statically.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

var (
	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrOutsideUploads is returned for paths that are not in the upload store.
	ErrOutsideUploads = errors.New("path is outside the upload directory")
)

// Dirs are the three store directories.
type Dirs struct {
	Uploads string
	Output  string
	Preview string
}

// Store is the filesystem backend. It is safe for concurrent use.
type Store struct {
	dirs   Dirs
	logger *slog.Logger
	seq    atomic.Uint64
}

// Bootstrap creates the store directories if needed and returns a Store
// over them. It must run once before the service accepts requests.
func Bootstrap(dirs Dirs, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs := Dirs{}
	for _, d := range []struct {
		name string
		in   string
		out  *string
	}{
		{"uploads", dirs.Uploads, &abs.Uploads},
		{"output", dirs.Output, &abs.Output},
		{"preview", dirs.Preview, &abs.Preview},
	} {
		if d.in == "" {
			return nil, fmt.Errorf("%s directory is not configured", d.name)
		}
		p, err := filepath.Abs(d.in)
		if err != nil {
			return nil, fmt.Errorf("resolving %s directory: %w", d.name, err)
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", d.name, err)
		}
		*d.out = p
	}

	logger.Debug("storage ready", "uploads", abs.Uploads, "output", abs.Output, "preview", abs.Preview)
	return &Store{dirs: abs, logger: logger}, nil
}

// Dirs returns the absolute store directories.
func (s *Store) Dirs() Dirs {
	return s.dirs
}

// RemoveSources deletes source images. Failures are logged and otherwise ignored.
func (s *Store) RemoveSources(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			s.logger.Warn("failed to delete source image", "path", p, "error", err)
		}
	}
}
