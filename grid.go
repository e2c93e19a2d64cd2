package img2mosaic

// Placement is the tile chosen for one grid cell.
type Placement struct {
	Row, Col int
	Tile     Tile
	// Target is the sampled color of the cell.
	Target RGB
	// Score is the perceptual distance plus any constraint penalties.
	Score float64
	// Violation is set when the tile still breaks a spatial constraint
	// because no compliant candidate was found.
	Violation bool
}

// Grid holds the placements of one mosaic run in row-major order. Cells
// are nil until placed.
type Grid struct {
	Rows, Cols int
	cells      []*Placement
}

// NewGrid creates an empty grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		Rows:  rows,
		Cols:  cols,
		cells: make([]*Placement, rows*cols),
	}
}

// At returns the placement at (row, col), or nil when the cell is empty
// or out of range.
func (g *Grid) At(row, col int) *Placement {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return nil
	}
	return g.cells[row*g.Cols+col]
}

func (g *Grid) set(p Placement) {
	g.cells[p.Row*g.Cols+p.Col] = &p
}

// Each calls f for every placed cell in row-major order.
func (g *Grid) Each(f func(p *Placement)) {
	for _, p := range g.cells {
		if p != nil {
			f(p)
		}
	}
}

// Complete reports whether every cell has been placed.
func (g *Grid) Complete() bool {
	for _, p := range g.cells {
		if p == nil {
			return false
		}
	}
	return true
}
