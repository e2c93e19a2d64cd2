package img2mosaic

import (
	"image"

	"github.com/wbrown/img2mosaic/imageutil"
)

// Mosaic is a completed run over a target image.
type Mosaic struct {
	*Result
	// Cells describes how the target image was divided.
	Cells imageutil.CellGrid
}

// SampleTargets divides img into blocks x blocks equal cells and returns
// the rounded mean color of each, row-major. Cells smaller than one pixel
// are a ConfigError.
func SampleTargets(img image.Image, blocks int) ([][]RGB, imageutil.CellGrid, error) {
	cells, err := imageutil.NewCellGrid(img.Bounds(), blocks)
	if err != nil {
		return nil, imageutil.CellGrid{}, &ConfigError{Field: "blocks", Err: err}
	}

	sampled := cells.Sample(img)
	targets := make([][]RGB, len(sampled))
	for r, row := range sampled {
		targets[r] = make([]RGB, len(row))
		for c, px := range row {
			targets[r][c] = rgbFromImageutil(px)
		}
	}
	return targets, cells, nil
}

// BuildImage samples img into a blocks x blocks grid and places a tile
// in every cell.
func (b *Builder) BuildImage(img image.Image, blocks int) (*Mosaic, error) {
	targets, cells, err := SampleTargets(img, blocks)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("sampled target image",
		"blocks", blocks, "cell_width", cells.CellW, "cell_height", cells.CellH)

	result, err := b.Build(targets)
	if err != nil {
		return nil, err
	}
	return &Mosaic{Result: result, Cells: cells}, nil
}

// RenderOptions returns render options sized so the output keeps the
// target's cell size.
func (m *Mosaic) RenderOptions() RenderOptions {
	return RenderOptions{TileWidth: m.Cells.CellW, TileHeight: m.Cells.CellH}
}
