package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wbrown/img2mosaic"
	"github.com/wbrown/img2mosaic/imageutil"
)

var (
	buildFlags Options
	buildSeed  uint64
	configPath string
)

func init() {
	f := buildCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML file with build options; flags override it")
	f.StringVarP(&buildFlags.Dir, "dir", "d", "", "Directory of tile images (required)")
	f.StringVarP(&buildFlags.Input, "input", "i", "", "Target image (required)")
	f.StringVarP(&buildFlags.Output, "output", "o", "", "Output image; the extension picks the format (required)")
	f.BoolVar(&buildFlags.RebuildCache, "rebuild-cache", false, "Rescan the tile directory even if a cache exists")
	f.IntVarP(&buildFlags.Blocks, "blocks", "b", 50, "Cells per side of the mosaic grid")
	f.Float64VarP(&buildFlags.Noise, "noise", "n", 0, "Chance in [0, 1] of a random turn at each tree decision")
	f.BoolVar(&buildFlags.Consume, "consume", false, "Use every tile at most once")
	f.BoolVar(&buildFlags.AdjacencyBan, "adjacency-ban", false, "Never repeat a tile in a neighboring cell")
	f.IntVar(&buildFlags.DiversityRadius, "diversity-radius", 0, "Never repeat a tile within this many cells")
	f.IntVar(&buildFlags.MaxUsage, "max-usage", 0, "Place each tile at most this many times (0 = unlimited)")
	f.Uint64Var(&buildSeed, "seed", 0, "Random seed for noise (default: time based)")
	f.StringVar(&buildFlags.Index, "index", string(img2mosaic.IndexMatchTree), "Tile index: tree or kd (kd needs no constraints)")
	f.IntVarP(&buildFlags.Tint, "tint", "t", 0, "Alpha in [0, 255] of the average color laid over each tile")
	f.IntVarP(&buildFlags.Padding, "padding", "p", 0, "Gap in pixels around each tile")
	f.IntVarP(&buildFlags.Stroke, "stroke", "s", 0, "Border width drawn in each tile's average color")
	f.BoolVar(&buildFlags.Circle, "circle", false, "Draw tiles as circles")
	f.StringVar(&buildFlags.Scaler, "scaler", "linear", "Tile image scaling: linear, area or nearest")
	f.IntVar(&buildFlags.Workers, "workers", 0, "Concurrent image decodes (0 = one per CPU)")
	f.StringVar(&buildFlags.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a mosaic of a target image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(cmd)
		if err != nil {
			return err
		}
		return runBuild(cmd, opts)
	},
}

func resolveOptions(cmd *cobra.Command) (*Options, error) {
	opts := defaultOptions()
	if configPath != "" {
		if err := loadOptionsFile(configPath, &opts); err != nil {
			return nil, err
		}
	}
	opts.mergeFlags(&buildFlags, buildSeed, cmd.Flags().Changed)
	if err := opts.finalize(time.Now()); err != nil {
		return nil, err
	}
	return &opts, nil
}

func runBuild(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	metrics := newRunMetrics()
	start := time.Now()
	logger.Info("building mosaic",
		"input", opts.Input, "blocks", opts.Blocks, "index", opts.Index, "seed", *opts.Seed)

	catalog, err := img2mosaic.LoadOrScan(ctx, opts.Dir, opts.RebuildCache,
		img2mosaic.ScanOptions{Workers: opts.Workers, Logger: logger})
	if err != nil {
		return fmt.Errorf("load tiles: %w", err)
	}
	metrics.observePhase("catalog", time.Since(start))
	logger.Info("tile catalog ready", "tiles", len(catalog))

	progress := newProgress("matching", logger)
	builder, err := img2mosaic.NewBuilder(catalog,
		img2mosaic.WithConstraints(opts.constraints()),
		img2mosaic.WithIndex(img2mosaic.IndexKind(opts.Index)),
		img2mosaic.WithSeed(*opts.Seed),
		img2mosaic.WithLogger(logger),
		img2mosaic.WithProgress(progress.update),
	)
	if err != nil {
		return err
	}
	metrics.observePhase("index", builder.BuildTime())

	target, err := imageutil.LoadImage(opts.Input)
	if err != nil {
		return &img2mosaic.ConfigError{Field: "input", Err: err}
	}

	matchStart := time.Now()
	mosaic, err := builder.BuildImage(target.RGBA, opts.Blocks)
	if err != nil {
		return err
	}
	metrics.observePhase("match", time.Since(matchStart))
	metrics.observeRun(len(catalog), mosaic)
	s := mosaic.Stats
	logger.Info("tiles placed",
		"cells", s.Cells, "distinct", mosaic.Ledger.Len(), "queries", s.Queries,
		"spatial_rejects", s.SpatialRejects, "cap_discards", s.CapDiscards,
		"soft_violations", s.SoftViolations, "fallbacks", s.Fallbacks)
	for _, u := range mosaic.Ledger.Top(5) {
		logger.Debug("frequent tile", "id", u.ID, "count", u.Count)
	}

	renderStart := time.Now()
	canvas, err := img2mosaic.NewCanvas(opts.renderOptions(mosaic.RenderOptions()), logger)
	if err != nil {
		return err
	}
	out, err := canvas.Render(ctx, mosaic.Grid)
	if err != nil {
		return err
	}
	if err := imageutil.SaveImage(out, opts.Output); err != nil {
		return err
	}
	metrics.observePhase("render", time.Since(renderStart))
	hits, misses := canvas.Images().Stats()
	logger.Debug("tile image cache", "images", canvas.Images().Len(), "hits", hits, "misses", misses)

	info, err := os.Stat(opts.Output)
	if err != nil {
		return err
	}
	logger.Info("mosaic written",
		"output", opts.Output,
		"size", humanize.Bytes(uint64(info.Size())),
		"dimensions", fmt.Sprintf("%dx%d", out.Bounds().Dx(), out.Bounds().Dy()),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if opts.MetricsFile != "" {
		metrics.observePhase("total", time.Since(start))
		if err := metrics.write(opts.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
