package img2mosaic

import (
	"context"
	"image"
	"image/color"
	"log/slog"

	"github.com/wbrown/img2mosaic/imageutil"
)

// RenderOptions controls how placed tiles are drawn.
type RenderOptions struct {
	// TileWidth and TileHeight are the output size of one grid cell.
	TileWidth, TileHeight int
	// Padding is the gap in pixels kept on each side of a tile.
	Padding int
	// Stroke is the width of the border drawn in the tile's average
	// color. Zero draws no border.
	Stroke int
	// Circle draws tiles, their tint and their border as ellipses.
	Circle bool
	// Tint is the alpha of the average color laid over each cell. At 255
	// the tile image is not drawn at all.
	Tint uint8
	// Scaler resizes tile images to the drawn size. The zero value is
	// bilinear.
	Scaler imageutil.Interpolation
	// Workers bounds concurrent tile decodes. Zero means GOMAXPROCS.
	Workers int
}

// Validate reports options that leave no room to draw a tile.
func (o RenderOptions) Validate() error {
	if o.TileWidth <= 0 || o.TileHeight <= 0 {
		return configErrorf("tile size", "%dx%d is empty", o.TileWidth, o.TileHeight)
	}
	if o.Padding < 0 {
		return configErrorf("padding", "must not be negative, got %d", o.Padding)
	}
	if w, h := o.innerSize(); w <= 0 || h <= 0 {
		return configErrorf("padding", "%d leaves nothing of a %dx%d tile",
			o.Padding, o.TileWidth, o.TileHeight)
	}
	if o.Stroke < 0 {
		return configErrorf("stroke", "must not be negative, got %d", o.Stroke)
	}
	return nil
}

func (o RenderOptions) innerSize() (int, int) {
	return o.TileWidth - 2*o.Padding, o.TileHeight - 2*o.Padding
}

// Canvas draws completed grids.
type Canvas struct {
	opts   RenderOptions
	images *TileImages
	logger *slog.Logger
}

// NewCanvas validates opts and prepares an empty tile image cache.
func NewCanvas(opts RenderOptions, logger *slog.Logger) (*Canvas, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, h := opts.innerSize()
	return &Canvas{opts: opts, images: NewTileImages(w, h, opts.Scaler), logger: logger}, nil
}

// Images returns the tile image cache used by Render.
func (c *Canvas) Images() *TileImages {
	return c.images
}

// Render draws every placement of grid onto a white image of
// TileWidth*Cols x TileHeight*Rows pixels. Tile images are loaded before
// drawing starts; a tile whose image cannot be read is drawn as a flat
// fill of its average color.
func (c *Canvas) Render(ctx context.Context, grid *Grid) (*image.RGBA, error) {
	if c.opts.Tint < 255 {
		var paths []string
		grid.Each(func(p *Placement) {
			paths = append(paths, p.Tile.Path)
		})
		if err := c.images.Preload(ctx, paths, c.opts.Workers, c.logger); err != nil {
			return nil, err
		}
	}

	out := imageutil.NewRGBAImage(c.opts.TileWidth*grid.Cols, c.opts.TileHeight*grid.Rows)
	out.Fill(color.White)
	grid.Each(func(p *Placement) {
		c.drawCell(out, p)
	})
	return out.RGBA, nil
}

func (c *Canvas) drawCell(dst *imageutil.RGBAImage, p *Placement) {
	o := c.opts
	full := image.Rect(0, 0, o.TileWidth, o.TileHeight).
		Add(image.Pt(p.Col*o.TileWidth, p.Row*o.TileHeight))
	inner := full.Inset(o.Padding)
	avg := p.Tile.Color.toImageutil()

	if o.Tint < 255 {
		img, ok := c.images.Get(p.Tile.Path, c.logger)
		switch {
		case !ok && o.Circle:
			imageutil.FillEllipse(dst.RGBA, inner, image.NewUniform(avg.ToColor()))
		case !ok:
			imageutil.FillRectOver(dst.RGBA, inner, avg.ToColor())
		case o.Circle:
			imageutil.FillEllipse(dst.RGBA, inner, img.RGBA)
		default:
			imageutil.DrawScaled(dst.RGBA, inner, img.RGBA)
		}
	}

	if o.Tint > 0 {
		tint := avg.WithAlpha(o.Tint)
		if o.Circle {
			imageutil.FillEllipse(dst.RGBA, inner, image.NewUniform(tint))
		} else {
			imageutil.FillRectOver(dst.RGBA, full, tint)
		}
	}

	if o.Stroke > 0 {
		if o.Circle {
			imageutil.StrokeEllipse(dst.RGBA, inner, o.Stroke, avg.ToColor())
		} else {
			imageutil.StrokeRect(dst.RGBA, inner, o.Stroke, avg.ToColor())
		}
	}
}
