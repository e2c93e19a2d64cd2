package img2mosaic

import (
	"fmt"

	"github.com/wbrown/img2mosaic/imageutil"
)

// RGB represents a color in the RGB color space with 8-bit channels,
// where each channel ranges from 0 to 255. Tiles and grid cells are both
// summarized by a single averaged RGB value.
type RGB struct {
	R, G, B uint8
}

// rgbFromImageutil converts the imageutil pixel type into an RGB.
func rgbFromImageutil(c imageutil.RGB) RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// toImageutil converts an RGB into the imageutil pixel type.
func (r RGB) toImageutil() imageutil.RGB {
	return imageutil.RGB{R: r.R, G: r.G, B: r.B}
}

// toUint32 packs an RGB color into a 24-bit value.
func (r RGB) toUint32() uint32 {
	return uint32(r.R)<<16 | uint32(r.G)<<8 | uint32(r.B)
}

// average returns the channel-wise integer mean of two colors. The
// remainder is truncated.
func (r RGB) average(other RGB) RGB {
	return RGB{
		R: uint8((int(r.R) + int(other.R)) / 2),
		G: uint8((int(r.G) + int(other.G)) / 2),
		B: uint8((int(r.B) + int(other.B)) / 2),
	}
}

// RGBDistance returns the squared Euclidean distance between two colors
// in raw RGB space. It is kept for comparison against the perceptual
// metric; the matching engine does not use it.
func (r RGB) RGBDistance(other RGB) float64 {
	dr := int(r.R) - int(other.R)
	dg := int(r.G) - int(other.G)
	db := int(r.B) - int(other.B)
	return float64(dr*dr + dg*dg + db*db)
}

func (r RGB) String() string {
	return fmt.Sprintf("#%06X", r.toUint32())
}
