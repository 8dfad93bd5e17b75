// Package watch turns an inbox directory into a collage drop box: once
// images stop arriving for a quiet period, everything in the inbox is
// built into a dual collage and removed. Batches that cannot be built
// are moved to the rejected subfolder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kozaktomas/image-collage/internal/collage"
)

// RejectedDir is the inbox subfolder that receives batches that cannot be built.
const RejectedDir = "rejected"

// Creator builds and publishes collages.
type Creator interface {
	Create(ctx context.Context, req collage.Request) (*collage.Response, error)
}

// Watcher monitors an inbox directory for new images.
type Watcher struct {
	dir     string
	cols    int
	quiet   time.Duration
	creator Creator
	logger  *slog.Logger

	// OnBatch, if set, receives the result of every batch build.
	OnBatch func(*collage.Response, error)
}

// New creates a watcher for dir. Batches are laid out over cols columns.
func New(dir string, cols int, quiet time.Duration, creator Creator, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:     dir,
		cols:    collage.NormalizeColumns(cols),
		quiet:   quiet,
		creator: creator,
		logger:  logger,
	}
}

// IsImageFile checks if a file has a supported image extension
func IsImageFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// Pending lists the images currently in the inbox, sorted by name.
func (w *Watcher) Pending() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox %s: %w", w.dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Flush builds a dual collage from every pending image. It returns
// collage.ErrNoInput when the inbox holds no images.
func (w *Watcher) Flush(ctx context.Context) (*collage.Response, error) {
	_, resp, err := w.flush(ctx)
	return resp, err
}

func (w *Watcher) flush(ctx context.Context) ([]string, *collage.Response, error) {
	paths, err := w.Pending()
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, collage.ErrNoInput
	}

	w.logger.Info("building collage from inbox", "dir", w.dir, "images", len(paths))
	resp, err := w.creator.Create(ctx, collage.Request{
		Variant:    collage.VariantDual,
		ImagePaths: paths,
		Columns:    w.cols,
	})
	return paths, resp, err
}

// Run watches the inbox until ctx is cancelled. Images already in the
// inbox are picked up after the first quiet period.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	w.logger.Info("watching inbox", "dir", w.dir, "quiet", w.quiet)

	timer := time.NewTimer(w.quiet)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !IsImageFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: restart the quiet period on every change
			timer.Reset(w.quiet)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "dir", w.dir, "error", err)

		case <-timer.C:
			w.flushBatch(ctx)
		}
	}
}

func (w *Watcher) flushBatch(ctx context.Context) {
	paths, resp, err := w.flush(ctx)
	switch {
	case errors.Is(err, collage.ErrNoInput):
		return
	case err != nil && ctx.Err() != nil:
		return
	case errors.Is(err, collage.ErrNoValidAssets), errors.Is(err, collage.ErrCanvasTooLarge):
		// Retrying the same batch can never succeed.
		w.logger.Error("inbox collage rejected", "dir", w.dir, "error", err)
		w.reject(paths)
	case err != nil:
		w.logger.Error("inbox collage failed, images stay in the inbox",
			"dir", w.dir, "files", paths, "error", err)
	}
	if w.OnBatch != nil {
		w.OnBatch(resp, err)
	}
}

// reject moves images out of the inbox into its rejected folder.
func (w *Watcher) reject(paths []string) {
	dir := filepath.Join(w.dir, RejectedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Error("cannot create rejected folder, images stay in the inbox",
			"dir", dir, "files", paths, "error", err)
		return
	}
	for _, p := range paths {
		dst := filepath.Join(dir, filepath.Base(p))
		if _, err := os.Stat(dst); err == nil {
			dst = filepath.Join(dir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(p)))
		}
		if err := os.Rename(p, dst); err != nil {
			w.logger.Warn("failed to move rejected image", "path", p, "error", err)
			continue
		}
		w.logger.Warn("moved rejected image", "path", p, "to", dst)
	}
}
