package collage

import (
	"fmt"
	"image/color"
	"image/png"
)

// Policy holds the sizing and encoding constants of the engine.
type Policy struct {
	// MinTileSize is the floor for both tile dimensions in ModeOriginal.
	MinTileSize int
	// LineProtocolSide is the tile size and final square side in ModeLineProtocol.
	LineProtocolSide int
	// Compression is the fixed PNG encoder effort.
	Compression png.CompressionLevel
	// Background fills empty cells and square padding.
	Background color.Color
	// MaxCanvasPixels bounds both the composed canvas and every decoded source.
	MaxCanvasPixels int64
}

// DefaultPolicy returns the policy used when no configuration overrides it.
func DefaultPolicy() Policy {
	return Policy{
		MinTileSize:      500,
		LineProtocolSide: 240,
		Compression:      png.DefaultCompression,
		Background:       color.White,
		MaxCanvasPixels:  100_000_000,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MinTileSize <= 0 {
		p.MinTileSize = def.MinTileSize
	}
	if p.LineProtocolSide <= 0 {
		p.LineProtocolSide = def.LineProtocolSide
	}
	if p.Background == nil {
		p.Background = def.Background
	}
	if p.MaxCanvasPixels <= 0 {
		p.MaxCanvasPixels = def.MaxCanvasPixels
	}
	return p
}

// TileSize computes the uniform tile size for a batch of assets.
// assets must not be empty for ModeOriginal.
func (p Policy) TileSize(assets []AssetRef, mode ExportMode) (width, height int) {
	if mode == ModeLineProtocol {
		return p.LineProtocolSide, p.LineProtocolSide
	}

	width, height = p.MinTileSize, p.MinTileSize
	for _, a := range assets {
		width = max(width, a.Width)
		height = max(height, a.Height)
	}
	return width, height
}

// CheckCanvas reports ErrCanvasTooLarge when a grid of count tiles over
// cols columns would exceed the pixel budget. All products are bounded by
// the budget before they are formed, so huge inputs cannot overflow.
func (p Policy) CheckCanvas(count, cols, tileWidth, tileHeight int) error {
	cols = NormalizeColumns(cols)
	rows := count / cols
	if count%cols != 0 {
		rows++
	}
	limit := p.MaxCanvasPixels
	if !fitsBudget(cols, tileWidth, limit) || !fitsBudget(rows, tileHeight, limit) ||
		!fitsBudget(cols*tileWidth, rows*tileHeight, limit) {
		return fmt.Errorf("%w: %dx%d grid of %dx%d tiles exceeds %d pixels",
			ErrCanvasTooLarge, cols, rows, tileWidth, tileHeight, limit)
	}
	return nil
}

// CheckSources reports ErrCanvasTooLarge when any asset would decode to
// more pixels than the budget allows.
func (p Policy) CheckSources(assets []AssetRef) error {
	for _, a := range assets {
		if !fitsBudget(a.Width, a.Height, p.MaxCanvasPixels) {
			return fmt.Errorf("%w: %s is %dx%d, budget is %d pixels",
				ErrCanvasTooLarge, a.Path, a.Width, a.Height, p.MaxCanvasPixels)
		}
	}
	return nil
}

// fitsBudget reports whether a*b <= limit for non-negative a and b.
func fitsBudget(a, b int, limit int64) bool {
	if a <= 0 || b <= 0 {
		return true
	}
	return int64(a) <= limit/int64(b)
}
