package img2mosaic

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a color in the CIE L*a*b* space. L ranges over [0, 100] and a, b
// nominally over [-128, 127]. Euclidean distance in this space tracks
// perceived color difference far better than distance in RGB.
type Lab struct {
	L, A, B float64
}

// ToLab converts an sRGB color to CIE L*a*b* under the D65 illuminant.
// The conversion is deterministic and has no side effects.
func (r RGB) ToLab() Lab {
	x, y, z := r.toXYZ()
	return xyzToLab(x, y, z)
}

// toXYZ linearizes the sRGB channels and applies the D65 RGB to XYZ
// matrix. The result is scaled so that white has Y = 100.
func (r RGB) toXYZ() (x, y, z float64) {
	rl := linearize(float64(r.R)/255.0) * 100.0
	gl := linearize(float64(r.G)/255.0) * 100.0
	bl := linearize(float64(r.B)/255.0) * 100.0

	x = rl*0.4124564 + gl*0.3575761 + bl*0.1804375
	y = rl*0.2126729 + gl*0.7151522 + bl*0.0721750
	z = rl*0.0193339 + gl*0.1191920 + bl*0.9503041
	return x, y, z
}

// linearize undoes the sRGB transfer curve for a channel in [0, 1].
func linearize(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

// xyzToLab maps XYZ scaled to Y = 100 onto L*a*b* relative to the D65
// white, 2 degree observer.
func xyzToLab(x, y, z float64) Lab {
	l, a, b := colorful.XyzToLabWhiteRef(x/100, y/100, z/100, colorful.D65)
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// Distance returns the squared Euclidean distance between two Lab colors.
// The square root is omitted; callers only compare distances.
func (l Lab) Distance(other Lab) float64 {
	dl := l.L - other.L
	da := l.A - other.A
	db := l.B - other.B
	return dl*dl + da*da + db*db
}

// DeltaE returns the CIE76 color difference, the square root of Distance.
func (l Lab) DeltaE(other Lab) float64 {
	return math.Sqrt(l.Distance(other))
}

// component returns the coordinate used as the split axis at a given
// KD-tree depth: 0 is L, 1 is a, 2 is b.
func (l Lab) component(axis int) float64 {
	switch axis {
	case 0:
		return l.L
	case 1:
		return l.A
	default:
		return l.B
	}
}
