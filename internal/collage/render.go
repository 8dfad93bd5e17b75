package collage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// RenderTile decodes an asset and resizes it to exactly width x height,
// scaling to cover the box and cropping the overflow around the center.
func RenderTile(asset AssetRef, width, height int) (*image.NRGBA, error) {
	src, err := imaging.Open(asset.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetUnreadable, asset.Path, err)
	}
	return imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos), nil
}

// Composite draws tiles onto a canvas of the grid's size filled with bg.
// Tiles never overlap, so each one only ever covers background.
func Composite(grid GridSpec, tiles []PlacedTile, bg image.Image) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, grid.CanvasWidth, grid.CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), bg, image.Point{}, draw.Src)

	for _, t := range tiles {
		if t.Pixels == nil {
			continue
		}
		b := t.Pixels.Bounds()
		dst := image.Rectangle{Min: t.Offset, Max: t.Offset.Add(b.Size())}
		// Over flattens translucent tiles against the background, keeping the canvas opaque.
		draw.Draw(canvas, dst, t.Pixels, b.Min, draw.Over)
	}
	return canvas
}

// NormalizeToSquare scales img down to fit a side x side box without
// cropping and pads the remainder with bg, centered.
func NormalizeToSquare(img image.Image, side int, bg image.Image) *image.NRGBA {
	fitted := imaging.Fit(img, side, side, imaging.Lanczos)

	square := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(square, square.Bounds(), bg, image.Point{}, draw.Src)
	return imaging.PasteCenter(square, fitted)
}

// EncodePNG encodes img with a fixed compression level.
func EncodePNG(img image.Image, level png.CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}
