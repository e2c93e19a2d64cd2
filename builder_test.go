package img2mosaic

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2mosaic/imageutil"
)

func uniformTargets(rows, cols int, c RGB) [][]RGB {
	targets := make([][]RGB, rows)
	for r := range targets {
		targets[r] = make([]RGB, cols)
		for col := range targets[r] {
			targets[r][col] = c
		}
	}
	return targets
}

func TestBuilderUnconstrained(t *testing.T) {
	tiles := tilesOf(gray(0), gray(255), gray(20), gray(235))
	b, err := NewBuilder(tiles)
	require.NoError(t, err)
	require.NotNil(t, b.Tree())

	targets := [][]RGB{
		{gray(2), gray(250)},
		{gray(18), gray(230)},
	}
	res, err := b.Build(targets)
	require.NoError(t, err)
	require.True(t, res.Grid.Complete())

	assert.Equal(t, "0", res.Grid.At(0, 0).Tile.ID)
	assert.Equal(t, "1", res.Grid.At(0, 1).Tile.ID)
	assert.Equal(t, "2", res.Grid.At(1, 0).Tile.ID)
	assert.Equal(t, "3", res.Grid.At(1, 1).Tile.ID)
	assert.Equal(t, gray(18), res.Grid.At(1, 0).Target)
	assert.Equal(t, 4, res.Stats.Cells)
	assert.Equal(t, 4, res.Ledger.Total())
}

func TestBuilderKdMatchesTree(t *testing.T) {
	tiles := tilesOf(gray(0), gray(255), gray(20), gray(235))
	kd, err := NewBuilder(tiles, WithIndex(IndexKd))
	require.NoError(t, err)
	assert.Nil(t, kd.Tree())
	tree, err := NewBuilder(tiles)
	require.NoError(t, err)

	targets := [][]RGB{{gray(2), gray(250), gray(18), gray(230)}}
	a, err := kd.Build(targets)
	require.NoError(t, err)
	b, err := tree.Build(targets)
	require.NoError(t, err)
	for c := 0; c < 4; c++ {
		assert.Equal(t, b.Grid.At(0, c).Tile.ID, a.Grid.At(0, c).Tile.ID)
	}
}

func TestBuilderKdRejectsConstraints(t *testing.T) {
	_, err := NewBuilder(tilesOf(gray(0), gray(1)),
		WithIndex(IndexKd), WithConstraints(ConstraintConfig{AdjacencyBan: true}))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "index", cfgErr.Field)

	_, err = NewBuilder(tilesOf(gray(0)), WithIndex("quad"))
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBuilderEmptyCatalog(t *testing.T) {
	_, err := NewBuilder(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	_, err = NewBuilder(Catalog{}, WithIndex(IndexKd))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestBuilderRejectsRaggedTargets(t *testing.T) {
	b, err := NewBuilder(tilesOf(gray(0), gray(1)))
	require.NoError(t, err)

	_, err = b.Build([][]RGB{{gray(0), gray(0)}, {gray(0)}})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	_, err = b.Build(nil)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestBuilderRunsAreIndependent(t *testing.T) {
	b, err := NewBuilder(tilesOf(gray(0), gray(10)), WithConstraints(ConstraintConfig{ConsumeOnUse: true}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		res, err := b.Build(uniformTargets(1, 2, gray(0)))
		require.NoError(t, err, "run %d", i)
		assert.Equal(t, "0", res.Grid.At(0, 0).Tile.ID)
		assert.Equal(t, "1", res.Grid.At(0, 1).Tile.ID)
	}

	_, err = b.Build(uniformTargets(1, 3, gray(0)))
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestBuilderSeedReproducible(t *testing.T) {
	tiles := randomTiles(rand.New(rand.NewPCG(21, 21)), 50)
	cfg := ConstraintConfig{NoiseFactor: 0.4, DiversityRadius: 1}
	targets := uniformTargets(5, 5, RGB{100, 150, 200})

	ids := func(seed uint64) []string {
		b, err := NewBuilder(tiles, WithConstraints(cfg), WithSeed(seed))
		require.NoError(t, err)
		res, err := b.Build(targets)
		require.NoError(t, err)
		var out []string
		res.Grid.Each(func(p *Placement) {
			out = append(out, p.Tile.ID)
		})
		return out
	}
	assert.Equal(t, ids(99), ids(99))
}

func TestBuilderProgress(t *testing.T) {
	var calls [][2]int
	b, err := NewBuilder(tilesOf(gray(0), gray(1)), WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	require.NoError(t, err)
	_, err = b.Build(uniformTargets(2, 2, gray(0)))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, calls)
}

func TestBuildImage(t *testing.T) {
	red := imageutil.RGB{R: 255}
	blue := imageutil.RGB{B: 255}
	img := imageutil.CreateQuadrantImage(40, 20, red, blue, blue, red)

	tiles := tilesOf(RGB{250, 0, 0}, RGB{0, 0, 250})
	b, err := NewBuilder(tiles)
	require.NoError(t, err)

	m, err := b.BuildImage(img.RGBA, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, m.Cells.CellW)
	assert.Equal(t, 10, m.Cells.CellH)
	assert.Equal(t, "0", m.Grid.At(0, 0).Tile.ID)
	assert.Equal(t, "1", m.Grid.At(0, 1).Tile.ID)
	assert.Equal(t, "1", m.Grid.At(1, 1).Tile.ID)
	assert.Equal(t, "0", m.Grid.At(1, 0).Tile.ID)
	assert.Equal(t, RenderOptions{TileWidth: 20, TileHeight: 10}, m.RenderOptions())

	_, err = b.BuildImage(img.RGBA, 100)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "blocks", cfgErr.Field)
}
