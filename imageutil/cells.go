package imageutil

import (
	"fmt"
	"image"
)

// CellGrid splits an image into a rows x cols grid of equal cells
// anchored at the top left. Pixels past the last full cell are dropped.
type CellGrid struct {
	Rows, Cols   int
	CellW, CellH int
	origin       image.Point
}

// NewCellGrid divides bounds into blocks x blocks cells. It fails when a
// cell would be less than one pixel wide or tall.
func NewCellGrid(bounds image.Rectangle, blocks int) (CellGrid, error) {
	if blocks <= 0 {
		return CellGrid{}, fmt.Errorf("blocks must be positive, got %d", blocks)
	}
	cw, ch := bounds.Dx()/blocks, bounds.Dy()/blocks
	if cw == 0 || ch == 0 {
		return CellGrid{}, fmt.Errorf("%dx%d image is too small for %d blocks",
			bounds.Dx(), bounds.Dy(), blocks)
	}
	return CellGrid{Rows: blocks, Cols: blocks, CellW: cw, CellH: ch, origin: bounds.Min}, nil
}

// Rect returns the source rectangle of cell (row, col).
func (g CellGrid) Rect(row, col int) image.Rectangle {
	p := g.origin.Add(image.Pt(col*g.CellW, row*g.CellH))
	return image.Rectangle{Min: p, Max: p.Add(image.Pt(g.CellW, g.CellH))}
}

// Sample returns the mean color of every cell, row-major.
func (g CellGrid) Sample(img image.Image) [][]RGB {
	out := make([][]RGB, g.Rows)
	for r := range out {
		out[r] = make([]RGB, g.Cols)
		for c := range out[r] {
			out[r][c] = AverageRGB(img, g.Rect(r, c))
		}
	}
	return out
}
