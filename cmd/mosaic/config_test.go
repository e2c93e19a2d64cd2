package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2mosaic"
	"github.com/wbrown/img2mosaic/imageutil"
)

func changedSet(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestOptionsFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: tiles
input: in.png
output: out.png
blocks: 30
noise: 0.25
max_usage: 4
seed: 17
circle: true
scaler: nearest
`), 0o644))

	opts := defaultOptions()
	require.NoError(t, loadOptionsFile(path, &opts))

	flags := Options{Blocks: 80, Noise: 0.9, Output: "ignored.png"}
	opts.mergeFlags(&flags, 0, changedSet("blocks"))
	require.NoError(t, opts.finalize(time.Unix(0, 0)))

	assert.Equal(t, "tiles", opts.Dir)
	assert.Equal(t, "out.png", opts.Output)
	assert.Equal(t, 80, opts.Blocks)
	assert.Equal(t, 0.25, opts.Noise)
	assert.Equal(t, uint64(17), *opts.Seed)
	assert.True(t, opts.Circle)
	assert.Equal(t, "tree", opts.Index)

	assert.Equal(t, imageutil.InterpolationNearest,
		opts.renderOptions(img2mosaic.RenderOptions{}).Scaler)

	cfg := opts.constraints()
	assert.Equal(t, 4, cfg.MaxUsage)
	assert.Equal(t, 0.25, cfg.NoiseFactor)
}

func TestOptionsClampAndSeed(t *testing.T) {
	opts := defaultOptions()
	flags := Options{Dir: "d", Input: "i", Output: "o", Noise: 3, Tint: 400}
	opts.mergeFlags(&flags, 0, changedSet("dir", "input", "output", "noise", "tint"))
	require.NoError(t, opts.finalize(time.Unix(0, 1234)))

	assert.Equal(t, 1.0, opts.Noise)
	assert.Equal(t, 255, opts.Tint)
	assert.Equal(t, uint64(1234), *opts.Seed)

	r := opts.renderOptions(img2mosaic.RenderOptions{TileWidth: 8, TileHeight: 6})
	assert.Equal(t, uint8(255), r.Tint)
	assert.Equal(t, 8, r.TileWidth)
	assert.Equal(t, imageutil.InterpolationLinear, r.Scaler)
}

func TestOptionsExplicitZeroSeed(t *testing.T) {
	opts := defaultOptions()
	flags := Options{Dir: "d", Input: "i", Output: "o"}
	opts.mergeFlags(&flags, 0, changedSet("dir", "input", "output", "seed"))
	require.NoError(t, opts.finalize(time.Unix(0, 99)))
	assert.Equal(t, uint64(0), *opts.Seed)
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Options)
		field string
	}{
		{"missing dir", func(o *Options) { o.Dir = "" }, "Dir"},
		{"zero blocks", func(o *Options) { o.Blocks = 0 }, "Blocks"},
		{"bad index", func(o *Options) { o.Index = "quad" }, "Index"},
		{"bad scaler", func(o *Options) { o.Scaler = "cubic" }, "Scaler"},
		{"negative radius", func(o *Options) { o.DiversityRadius = -2 }, "DiversityRadius"},
		{"negative padding", func(o *Options) { o.Padding = -1 }, "Padding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.Dir, opts.Input, opts.Output = "d", "i", "o"
			tt.edit(&opts)

			err := opts.finalize(time.Now())
			var cfgErr *img2mosaic.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoadOptionsFileErrors(t *testing.T) {
	opts := defaultOptions()
	var cfgErr *img2mosaic.ConfigError
	assert.ErrorAs(t, loadOptionsFile(filepath.Join(t.TempDir(), "none.yaml"), &opts), &cfgErr)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blocks: [1, 2"), 0o644))
	assert.ErrorAs(t, loadOptionsFile(path, &opts), &cfgErr)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("json", true)
	assert.NoError(t, err)
	_, err = newLogger("xml", false)
	assert.Error(t, err)
}
