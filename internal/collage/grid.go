package collage

import "image"

// NormalizeColumns clamps a requested column count to at least 1.
func NormalizeColumns(cols int) int {
	if cols < 1 {
		return 1
	}
	return cols
}

// PlanGrid lays out count items row-major over cols columns of
// tileWidth x tileHeight cells. Unused trailing cells in the last row
// are kept as part of the canvas.
func PlanGrid(count, cols, tileWidth, tileHeight int) GridSpec {
	cols = NormalizeColumns(cols)
	rows := (count + cols - 1) / cols

	return GridSpec{
		Columns:      cols,
		Rows:         rows,
		TileWidth:    tileWidth,
		TileHeight:   tileHeight,
		CanvasWidth:  cols * tileWidth,
		CanvasHeight: rows * tileHeight,
	}
}

// Place positions a rendered tile for the item at index.
func (g GridSpec) Place(index int, pixels image.Image) PlacedTile {
	col, row := g.Cell(index)
	return PlacedTile{
		AssetIndex: index,
		Column:     col,
		Row:        row,
		Offset:     g.Offset(index),
		Pixels:     pixels,
	}
}
