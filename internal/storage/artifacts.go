package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var artifactPattern = regexp.MustCompile(`^collage-[a-z][a-z-]*-\d+(-\d+)?\.png$`)

// ArtifactName returns the published name of a collage. seq disambiguates
// artifacts of the same mode created within the same millisecond.
func ArtifactName(tag string, at time.Time, seq uint64) string {
	return fmt.Sprintf("collage-%s-%d-%d.png", tag, at.UnixMilli(), seq)
}

// ValidArtifactName reports whether name looks like a published collage.
func ValidArtifactName(name string) bool {
	return filepath.Base(name) == name && artifactPattern.MatchString(name)
}

// Publish writes data to both the output and the preview store under the
// same unique name. Both copies are staged first and then renamed into
// place, so a failed publish leaves neither copy visible.
func (s *Store) Publish(ctx context.Context, data []byte, tag string, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := ArtifactName(tag, at, s.seq.Add(1))

	staging, err := writeStaging(s.dirs.Output, data)
	if err != nil {
		return "", err
	}
	defer os.Remove(staging)

	previewTmp := filepath.Join(s.dirs.Preview, "."+name+".tmp")
	if err := linkOrCopy(staging, previewTmp); err != nil {
		return "", fmt.Errorf("staging preview copy: %w", err)
	}
	defer os.Remove(previewTmp)

	previewPath := filepath.Join(s.dirs.Preview, name)
	if err := os.Rename(previewTmp, previewPath); err != nil {
		return "", fmt.Errorf("publishing preview copy: %w", err)
	}
	if err := os.Rename(staging, filepath.Join(s.dirs.Output, name)); err != nil {
		if rmErr := os.Remove(previewPath); rmErr != nil {
			s.logger.Warn("failed to withdraw preview copy", "path", previewPath, "error", rmErr)
		}
		return "", fmt.Errorf("publishing output copy: %w", err)
	}
	return name, nil
}

// ArtifactPath returns the output store path of a published collage.
func (s *Store) ArtifactPath(name string) (string, error) {
	if !ValidArtifactName(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dirs.Output, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func writeStaging(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".staging-*.png")
	if err != nil {
		return "", fmt.Errorf("creating staging file: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("chmod staging file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("syncing staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing staging file: %w", err)
	}
	return f.Name(), nil
}

// linkOrCopy hard-links src to dst, falling back to a copy across devices.
func linkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) //nolint:gosec // staging file created by this package
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) //nolint:gosec // name built by ArtifactName
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
