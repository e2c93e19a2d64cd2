package imageutil

import (
	"image"
	"testing"
)

var (
	white = RGB{R: 255, G: 255, B: 255}
	red   = RGB{R: 255}
)

func whiteCanvas(w, h int) *RGBAImage {
	return CreateSolidImage(w, h, white)
}

func TestDrawScaled(t *testing.T) {
	canvas := whiteCanvas(20, 20)
	tile := CreateSolidImage(4, 4, red)
	DrawScaled(canvas.RGBA, image.Rect(5, 5, 15, 15), tile.RGBA)

	if got := canvas.GetRGB(10, 10); got != red {
		t.Errorf("Scaled tile center = %v, want red", got)
	}
	if got := canvas.GetRGB(2, 2); got != white {
		t.Errorf("Outside the target rect = %v, want white", got)
	}
}

func TestFillEllipse(t *testing.T) {
	canvas := whiteCanvas(30, 30)
	tile := CreateSolidImage(20, 20, red)
	FillEllipse(canvas.RGBA, image.Rect(5, 5, 25, 25), tile.RGBA)

	if got := canvas.GetRGB(15, 15); got != red {
		t.Errorf("Ellipse center = %v, want red", got)
	}
	if got := canvas.GetRGB(5, 5); got != white {
		t.Errorf("Clipped corner = %v, want white", got)
	}
	if got := canvas.GetRGB(1, 1); got != white {
		t.Errorf("Outside rect = %v, want white", got)
	}
}

func TestFillRectOver(t *testing.T) {
	canvas := whiteCanvas(10, 10)
	FillRectOver(canvas.RGBA, canvas.Bounds(), RGB{}.WithAlpha(128))

	got := canvas.GetRGB(5, 5)
	if got.R < 120 || got.R > 135 {
		t.Errorf("Half black over white should be mid gray, got %v", got)
	}
}

func TestStrokeRect(t *testing.T) {
	canvas := whiteCanvas(20, 20)
	StrokeRect(canvas.RGBA, image.Rect(5, 5, 15, 15), 2, red.ToColor())

	edge := canvas.GetRGB(5, 10)
	if edge.R != 255 || edge.G > 64 {
		t.Errorf("Stroked edge = %v, want red", edge)
	}
	if got := canvas.GetRGB(10, 10); got != white {
		t.Errorf("Inside stroke = %v, want white", got)
	}

	before := canvas.Clone()
	StrokeRect(canvas.RGBA, image.Rect(5, 5, 15, 15), 0, red.ToColor())
	if CalculateMaxDiff(before, canvas) != 0 {
		t.Error("Zero width stroke should not draw")
	}
}

func TestStrokeEllipse(t *testing.T) {
	canvas := whiteCanvas(30, 30)
	StrokeEllipse(canvas.RGBA, image.Rect(5, 5, 25, 25), 2, red.ToColor())

	edge := canvas.GetRGB(24, 15)
	if edge.R != 255 || edge.G > 64 {
		t.Errorf("Stroked ellipse edge = %v, want red", edge)
	}
	if got := canvas.GetRGB(15, 15); got != white {
		t.Errorf("Ellipse center = %v, want white", got)
	}
	if got := canvas.GetRGB(5, 5); got != white {
		t.Errorf("Corner outside ellipse = %v, want white", got)
	}
}
