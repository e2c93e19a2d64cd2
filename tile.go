package img2mosaic

import "fmt"

// Tile is a candidate source image summarized by its average color. The
// perceptual color is derived once from RGB when the tile is created and
// a Tile is never modified afterwards.
type Tile struct {
	ID    string
	Path  string
	Color RGB
	Lab   Lab
}

// NewTile creates a Tile and precomputes its perceptual color.
func NewTile(id, path string, c RGB) Tile {
	return Tile{
		ID:    id,
		Path:  path,
		Color: c,
		Lab:   c.ToLab(),
	}
}

// mergeTiles builds the synthetic tile held by an internal MatchTree
// node. Its id joins the two child ids and its color is the mean of the
// two RGB colors, not of their Lab colors.
func mergeTiles(left, right Tile) Tile {
	return NewTile(left.ID+","+right.ID, "", left.Color.average(right.Color))
}

func (t Tile) String() string {
	return fmt.Sprintf("{id: %s, color: %s}", t.ID, t.Color)
}
