package imageutil

import (
	"image"
)

// AverageRGB returns the rounded mean color of the pixels of img inside
// r. Alpha is ignored. An empty intersection yields black.
func AverageRGB(img image.Image, r image.Rectangle) RGB {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return RGB{}
	}

	var sumR, sumG, sumB uint64
	if rgba, ok := img.(*image.RGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := rgba.PixOffset(r.Min.X, y)
			for x := r.Min.X; x < r.Max.X; x++ {
				sumR += uint64(rgba.Pix[i])
				sumG += uint64(rgba.Pix[i+1])
				sumB += uint64(rgba.Pix[i+2])
				i += 4
			}
		}
	} else {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := RGBFromColor(img.At(x, y))
				sumR += uint64(c.R)
				sumG += uint64(c.G)
				sumB += uint64(c.B)
			}
		}
	}

	n := uint64(r.Dx() * r.Dy())
	return RGB{
		R: uint8((sumR + n/2) / n),
		G: uint8((sumG + n/2) / n),
		B: uint8((sumB + n/2) / n),
	}
}

// Average returns the rounded mean color of the whole image.
func (img *RGBAImage) Average() RGB {
	return AverageRGB(img.RGBA, img.Bounds())
}
