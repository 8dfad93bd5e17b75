package collage

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decoders lists the registered input formats.
var decoders = []string{"bmp", "gif", "jpeg", "png", "tiff", "webp"}

// SupportedFormats returns the decodable input formats, comma separated.
func SupportedFormats() string {
	return strings.Join(decoders, ", ")
}

// ReadAsset reads the dimensions of the image at path without decoding pixels.
func ReadAsset(index int, path string) (AssetRef, error) {
	f, err := os.Open(path) //nolint:gosec // paths are resolved by the caller
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %s: %w", ErrAssetUnreadable, path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %s: %w", ErrAssetUnreadable, path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return AssetRef{}, fmt.Errorf("%w: %s: empty image %dx%d", ErrAssetUnreadable, path, cfg.Width, cfg.Height)
	}

	return AssetRef{
		Index:  index,
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
