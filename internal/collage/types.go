package collage

import (
	"fmt"
	"image"
)

// ExportMode selects the tile sizing policy and whether square normalization runs.
type ExportMode int

const (
	// ModeOriginal keeps tiles at the size of the largest input (never below the floor).
	ModeOriginal ExportMode = iota
	// ModeLineProtocol produces a 240x240 square for fixed-size displays.
	ModeLineProtocol
)

// String returns the tag used in filenames and JSON.
func (m ExportMode) String() string {
	switch m {
	case ModeOriginal:
		return "original"
	case ModeLineProtocol:
		return "line-protocol"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseExportMode parses a mode tag as produced by String.
func ParseExportMode(s string) (ExportMode, error) {
	switch s {
	case "original", "":
		return ModeOriginal, nil
	case "line-protocol":
		return ModeLineProtocol, nil
	}
	return 0, fmt.Errorf("unknown export mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m ExportMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ExportMode) UnmarshalText(b []byte) error {
	mode, err := ParseExportMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// AssetRef describes a readable source image. Index is the position of the
// image in the request and determines its grid cell.
type AssetRef struct {
	Index  int
	Path   string
	Width  int
	Height int
}

// GridSpec is the layout of one collage.
type GridSpec struct {
	Columns      int
	Rows         int
	TileWidth    int
	TileHeight   int
	CanvasWidth  int
	CanvasHeight int
}

// Cell returns the column and row of the item at index (row-major).
func (g GridSpec) Cell(index int) (col, row int) {
	return index % g.Columns, index / g.Columns
}

// Offset returns the top-left pixel of the cell holding the item at index.
func (g GridSpec) Offset(index int) image.Point {
	col, row := g.Cell(index)
	return image.Pt(col*g.TileWidth, row*g.TileHeight)
}

// PlacedTile is a rendered tile positioned on the canvas.
type PlacedTile struct {
	AssetIndex int
	Column     int
	Row        int
	Offset     image.Point
	Pixels     image.Image
}

// Artifact is a published collage and its metadata.
type Artifact struct {
	Mode       ExportMode `json:"mode"`
	Filename   string     `json:"filename"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Columns    int        `json:"cols"`
	Rows       int        `json:"rows"`
	TileWidth  int        `json:"tileWidth"`
	TileHeight int        `json:"tileHeight"`
}
