package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/image-collage/internal/collage"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		mode        string
		variant     collage.Variant
		exportMode  collage.ExportMode
		expectError bool
	}{
		{"dual", collage.VariantDual, collage.ModeOriginal, false},
		{"original", collage.VariantSingle, collage.ModeOriginal, false},
		{"line-protocol", collage.VariantSingle, collage.ModeLineProtocol, false},
		{"", "", 0, true},
		{"sepia", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			req, err := buildRequest(tt.mode, []string{"a.png"}, 2, false)
			if tt.expectError {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Variant != tt.variant {
				t.Errorf("expected variant %s, got %s", tt.variant, req.Variant)
			}
			if req.Variant == collage.VariantSingle && req.Mode != tt.exportMode {
				t.Errorf("expected mode %s, got %s", tt.exportMode, req.Mode)
			}
			if !req.KeepSources {
				t.Error("expected sources to be kept by default")
			}
		})
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	for _, p := range []string{
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(sub, "c.webp"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	flat, err := collectImages([]string{dir}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flat) != 2 || filepath.Base(flat[0]) != "a.jpg" || filepath.Base(flat[1]) != "b.png" {
		t.Errorf("unexpected flat listing %v", flat)
	}

	deep, err := collectImages([]string{dir}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deep) != 3 {
		t.Errorf("expected 3 images with recursion, got %v", deep)
	}

	explicit, err := collectImages([]string{filepath.Join(dir, "notes.txt")}, false)
	if err != nil || len(explicit) != 1 {
		t.Errorf("expected explicit file argument to be kept, got %v (%v)", explicit, err)
	}

	if _, err := collectImages([]string{filepath.Join(dir, "missing")}, false); err == nil {
		t.Error("expected error for missing path")
	}
}
