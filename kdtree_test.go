package img2mosaic

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKdIndexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	for _, size := range []int{1, 2, 3, 7, 64, 500} {
		tiles := randomTiles(rng, size)
		index, err := BuildKdIndex(tiles)
		require.NoError(t, err)
		require.Equal(t, size, index.Len())

		for q := 0; q < 200; q++ {
			target := RGB{uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256))}.ToLab()
			_, wantDist := bruteForceNearest(tiles, target)
			got, gotDist := index.FindNearest(target)
			assert.Equal(t, wantDist, gotDist, "size %d query %d", size, q)
			assert.Equal(t, got.Lab.Distance(target), gotDist)
		}
	}
}

func TestKdIndexExactHit(t *testing.T) {
	tiles := randomTiles(rand.New(rand.NewPCG(8, 8)), 100)
	index, err := BuildKdIndex(tiles)
	require.NoError(t, err)

	for _, tile := range tiles {
		got, dist := index.FindNearest(tile.Lab)
		assert.Zero(t, dist)
		assert.Equal(t, tile.Color, got.Color)
	}
}

func TestKdIndexDuplicateColors(t *testing.T) {
	tiles := tilesOf(gray(50), gray(50), gray(50), gray(200), gray(200))
	index, err := BuildKdIndex(tiles)
	require.NoError(t, err)

	got, _ := index.FindNearest(gray(60).ToLab())
	assert.Equal(t, gray(50), got.Color)
	got, _ = index.FindNearest(gray(190).ToLab())
	assert.Equal(t, gray(200), got.Color)
}

func TestKdIndexDoesNotModifyInput(t *testing.T) {
	tiles := randomTiles(rand.New(rand.NewPCG(2, 2)), 30)
	before := append([]Tile(nil), tiles...)
	_, err := BuildKdIndex(tiles)
	require.NoError(t, err)
	assert.Equal(t, before, tiles)
}

func TestBuildKdIndexEmpty(t *testing.T) {
	_, err := BuildKdIndex(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
