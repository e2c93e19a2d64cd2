package img2mosaic

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLabKnownColors(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want Lab
	}{
		{"black", RGB{0, 0, 0}, Lab{0, 0, 0}},
		{"white", RGB{255, 255, 255}, Lab{100, 0, 0}},
		{"red", RGB{255, 0, 0}, Lab{53.24, 80.09, 67.20}},
		{"green", RGB{0, 255, 0}, Lab{87.73, -86.18, 83.18}},
		{"blue", RGB{0, 0, 255}, Lab{32.30, 79.19, -107.86}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rgb.ToLab()
			assert.InDelta(t, tt.want.L, got.L, 0.05, "L")
			assert.InDelta(t, tt.want.A, got.A, 0.05, "a")
			assert.InDelta(t, tt.want.B, got.B, 0.05, "b")
		})
	}
}

func TestToLabReferenceValues(t *testing.T) {
	// Values from the D65 conversion with threshold 0.008856 and slope
	// 7.787; the two dark grays fall on the linear branch.
	tests := []struct {
		rgb  RGB
		want Lab
	}{
		{RGB{128, 128, 128}, Lab{53.5850, 0, 0}},
		{RGB{3, 3, 3}, Lab{0.8225, 0, 0}},
		{RGB{10, 20, 5}, Lab{5.2010, -5.9214, 5.6278}},
		{RGB{200, 120, 40}, Lab{57.9123, 25.2959, 54.0821}},
	}
	for _, tt := range tests {
		got := tt.rgb.ToLab()
		assert.InDelta(t, tt.want.L, got.L, 1e-3, "%s L", tt.rgb)
		assert.InDelta(t, tt.want.A, got.A, 1e-3, "%s a", tt.rgb)
		assert.InDelta(t, tt.want.B, got.B, 1e-3, "%s b", tt.rgb)
	}
}

func TestLabDistanceIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		c := RGB{uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256))}
		assert.Zero(t, c.ToLab().Distance(c.ToLab()), "color %s", c)
	}
}

func TestLabDistanceIsSquared(t *testing.T) {
	a := Lab{L: 10}
	b := Lab{L: 13, A: 4}
	assert.Equal(t, 25.0, a.Distance(b))
	assert.Equal(t, 5.0, a.DeltaE(b))
	assert.Equal(t, a.Distance(b), b.Distance(a))
}

func TestLabOrdersGraysByLightness(t *testing.T) {
	prev := RGB{}.ToLab().L
	for v := 1; v < 256; v++ {
		l := RGB{uint8(v), uint8(v), uint8(v)}.ToLab().L
		assert.Greater(t, l, prev, "gray %d", v)
		prev = l
	}
}

func TestRGBDistance(t *testing.T) {
	assert.Equal(t, 0.0, RGB{1, 2, 3}.RGBDistance(RGB{1, 2, 3}))
	assert.Equal(t, 3.0*100*100, RGB{0, 0, 0}.RGBDistance(RGB{100, 100, 100}))
}

func TestRGBAverageTruncates(t *testing.T) {
	assert.Equal(t, RGB{127, 0, 1}, RGB{255, 0, 1}.average(RGB{0, 1, 2}))
	assert.Equal(t, "#FF0080", RGB{255, 0, 128}.String())
}
