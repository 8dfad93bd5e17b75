package collage

import (
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// writePNG writes img as a PNG file in dir and returns its path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

// writeSolidPNG writes a solid-color PNG and returns its path.
func writeSolidPNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	return writePNG(t, dir, name, solidImage(w, h, c))
}

// writeCorrupt writes a file that is not an image.
func writeCorrupt(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeTruncatedPNG writes a PNG whose header is intact but whose pixel data
// is cut off, so its dimensions can be read but it cannot be decoded.
func writeTruncatedPNG(t *testing.T, dir, name string) string {
	t.Helper()
	full := writeSolidPNG(t, dir, name+".full", 64, 64, green)
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("failed to read %s: %v", full, err)
	}
	path := filepath.Join(dir, name)
	// 8-byte signature + 25-byte IHDR chunk
	if err := os.WriteFile(path, data[:40], 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeHeaderOnlyPNG writes a PNG signature and IHDR chunk claiming w x h
// pixels with no image data behind it.
func writeHeaderOnlyPNG(t *testing.T, dir, name string, w, h uint32) string {
	t.Helper()
	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8 // bit depth
	ihdr[13] = 2 // truecolor

	data := []byte("\x89PNG\r\n\x1a\n")
	data = binary.BigEndian.AppendUint32(data, 13)
	data = append(data, ihdr...)
	data = binary.BigEndian.AppendUint32(data, crc32.ChecksumIEEE(ihdr))

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// assertColorAt checks the pixel at (x, y).
func assertColorAt(t *testing.T, img image.Image, x, y int, expected color.NRGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	if got != expected {
		t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, expected, got)
	}
}

// testPolicy keeps tiles small so tests stay fast.
func testPolicy() Policy {
	p := DefaultPolicy()
	p.MinTileSize = 20
	return p
}
