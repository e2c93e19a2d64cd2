package imageutil

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype/raster"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// kappa places cubic control points so four curves approximate an ellipse.
const kappa = 0.5522847498

// DrawScaled scales src into r of dst with bilinear filtering.
func DrawScaled(dst draw.Image, r image.Rectangle, src image.Image) {
	if r.Empty() {
		return
	}
	draw.BiLinear.Scale(dst, r, src, src.Bounds(), draw.Over, nil)
}

// FillEllipse draws src onto dst clipped to the ellipse inscribed in r.
// src is aligned so that its bounds origin lands on r.Min.
func FillEllipse(dst draw.Image, r image.Rectangle, src image.Image) {
	if r.Empty() {
		return
	}
	w, h := float32(r.Dx()), float32(r.Dy())
	cx, cy := w/2, h/2
	kx, ky := cx*kappa, cy*kappa

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.MoveTo(cx, 0)
	z.CubeTo(cx+kx, 0, w, cy-ky, w, cy)
	z.CubeTo(w, cy+ky, cx+kx, h, cx, h)
	z.CubeTo(cx-kx, h, 0, cy+ky, 0, cy)
	z.CubeTo(0, cy-ky, cx-kx, 0, cx, 0)
	z.ClosePath()
	z.Draw(dst, r, src, src.Bounds().Min)
}

// FillRectOver composites c over r of dst.
func FillRectOver(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeRect outlines r with a line of the given width centered on its
// edges.
func StrokeRect(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if width <= 0 || r.Empty() {
		return
	}
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)

	var path raster.Path
	path.Start(pt(x0, y0))
	path.Add1(pt(x1, y0))
	path.Add1(pt(x1, y1))
	path.Add1(pt(x0, y1))
	path.Add1(pt(x0, y0))
	stroke(dst, path, width, c)
}

// StrokeEllipse outlines the ellipse inscribed in r.
func StrokeEllipse(dst *image.RGBA, r image.Rectangle, width int, c color.Color) {
	if width <= 0 || r.Empty() {
		return
	}
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx, ry := float64(r.Dx())/2, float64(r.Dy())/2

	// Eight quadratic arcs; each control point sits on the bisector at
	// radius/cos(step/2).
	const segments = 8
	step := 2 * math.Pi / segments
	scale := 1 / math.Cos(step/2)

	var path raster.Path
	path.Start(pt(cx+rx, cy))
	for i := 1; i <= segments; i++ {
		mid := (float64(i) - 0.5) * step
		end := float64(i) * step
		path.Add2(
			pt(cx+rx*scale*math.Cos(mid), cy+ry*scale*math.Sin(mid)),
			pt(cx+rx*math.Cos(end), cy+ry*math.Sin(end)),
		)
	}
	stroke(dst, path, width, c)
}

func stroke(dst *image.RGBA, path raster.Path, width int, c color.Color) {
	b := dst.Bounds()
	z := raster.NewRasterizer(b.Max.X, b.Max.Y)
	z.UseNonZeroWinding = true
	raster.Stroke(z, path, fixed.I(width), raster.RoundCapper, raster.RoundJoiner)

	painter := raster.NewRGBAPainter(dst)
	painter.SetColor(c)
	z.Rasterize(painter)
}

func pt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{
		X: fixed.Int26_6(math.Round(x * 64)),
		Y: fixed.Int26_6(math.Round(y * 64)),
	}
}
