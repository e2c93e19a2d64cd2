package imageutil

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear Interpolation = iota

	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

var interpolationNames = map[string]Interpolation{
	"linear":  InterpolationLinear,
	"area":    InterpolationArea,
	"nearest": InterpolationNearest,
}

// ParseInterpolation returns the method named linear, area or nearest.
func ParseInterpolation(name string) (Interpolation, error) {
	interp, ok := interpolationNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown interpolation %q, want linear, area or nearest", name)
	}
	return interp, nil
}

func (interp Interpolation) String() string {
	for name, v := range interpolationNames {
		if v == interp {
			return name
		}
	}
	return fmt.Sprintf("Interpolation(%d)", int(interp))
}

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationArea:
		return draw.CatmullRom
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.BiLinear
	}
}

// Resize resizes an RGBA image to the specified dimensions using the
// given interpolation method.
func Resize(img *RGBAImage, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	dstRect := image.Rect(0, 0, width, height)
	interp.scaler().Scale(dst.RGBA, dstRect, img.RGBA, img.Bounds(), draw.Src, nil)
	return dst
}
