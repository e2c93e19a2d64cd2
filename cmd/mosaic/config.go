package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/img2mosaic"
	"github.com/wbrown/img2mosaic/imageutil"
)

// Options is the merged configuration of one build: defaults, then the
// YAML file named by --config, then any flag set on the command line.
type Options struct {
	Dir          string `yaml:"dir" validate:"required"`
	Input        string `yaml:"input" validate:"required"`
	Output       string `yaml:"output" validate:"required"`
	RebuildCache bool   `yaml:"rebuild_cache"`

	Blocks          int     `yaml:"blocks" validate:"gte=1"`
	Noise           float64 `yaml:"noise" validate:"gte=0,lte=1"`
	Consume         bool    `yaml:"consume"`
	AdjacencyBan    bool    `yaml:"adjacency_ban"`
	DiversityRadius int     `yaml:"diversity_radius" validate:"gte=0"`
	MaxUsage        int     `yaml:"max_usage" validate:"gte=0"`
	Seed            *uint64 `yaml:"seed"`
	Index           string  `yaml:"index" validate:"oneof=tree kd"`

	Tint    int    `yaml:"tint" validate:"gte=0,lte=255"`
	Padding int    `yaml:"padding" validate:"gte=0"`
	Stroke  int    `yaml:"stroke" validate:"gte=0"`
	Circle  bool   `yaml:"circle"`
	Scaler  string `yaml:"scaler" validate:"oneof=linear area nearest"`

	Workers     int    `yaml:"workers" validate:"gte=0"`
	MetricsFile string `yaml:"metrics_file"`
}

var validate = validator.New()

func defaultOptions() Options {
	return Options{
		Blocks: 50,
		Index:  string(img2mosaic.IndexMatchTree),
		Scaler: imageutil.InterpolationLinear.String(),
	}
}

// loadOptionsFile overlays the YAML file at path onto opts.
func loadOptionsFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &img2mosaic.ConfigError{Field: "config", Err: err}
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return &img2mosaic.ConfigError{Field: "config", Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return nil
}

// mergeFlags copies every field whose flag was set explicitly from
// flags into opts.
func (opts *Options) mergeFlags(flags *Options, seed uint64, changed func(name string) bool) {
	if changed("dir") {
		opts.Dir = flags.Dir
	}
	if changed("input") {
		opts.Input = flags.Input
	}
	if changed("output") {
		opts.Output = flags.Output
	}
	if changed("rebuild-cache") {
		opts.RebuildCache = flags.RebuildCache
	}
	if changed("blocks") {
		opts.Blocks = flags.Blocks
	}
	if changed("noise") {
		opts.Noise = flags.Noise
	}
	if changed("consume") {
		opts.Consume = flags.Consume
	}
	if changed("adjacency-ban") {
		opts.AdjacencyBan = flags.AdjacencyBan
	}
	if changed("diversity-radius") {
		opts.DiversityRadius = flags.DiversityRadius
	}
	if changed("max-usage") {
		opts.MaxUsage = flags.MaxUsage
	}
	if changed("seed") {
		opts.Seed = &seed
	}
	if changed("index") {
		opts.Index = flags.Index
	}
	if changed("tint") {
		opts.Tint = flags.Tint
	}
	if changed("padding") {
		opts.Padding = flags.Padding
	}
	if changed("stroke") {
		opts.Stroke = flags.Stroke
	}
	if changed("circle") {
		opts.Circle = flags.Circle
	}
	if changed("scaler") {
		opts.Scaler = flags.Scaler
	}
	if changed("workers") {
		opts.Workers = flags.Workers
	}
	if changed("metrics-file") {
		opts.MetricsFile = flags.MetricsFile
	}
}

// finalize clamps noise and tint into range, fills in a time based seed
// when none was given, and validates the result.
func (opts *Options) finalize(now time.Time) error {
	opts.Noise = min(max(opts.Noise, 0), 1)
	opts.Tint = min(max(opts.Tint, 0), 255)
	if opts.Seed == nil {
		seed := uint64(now.UnixNano())
		opts.Seed = &seed
	}

	if err := validate.Struct(opts); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &img2mosaic.ConfigError{
				Field: fe.Field(),
				Err:   fmt.Errorf("failed %q check with value %v", fe.Tag(), fe.Value()),
			}
		}
		return &img2mosaic.ConfigError{Err: err}
	}
	return nil
}

func (opts *Options) constraints() img2mosaic.ConstraintConfig {
	return img2mosaic.ConstraintConfig{
		AdjacencyBan:    opts.AdjacencyBan,
		DiversityRadius: opts.DiversityRadius,
		MaxUsage:        opts.MaxUsage,
		ConsumeOnUse:    opts.Consume,
		NoiseFactor:     opts.Noise,
	}
}

// renderOptions fills in the drawing options for cells of the given
// size. opts must have passed finalize.
func (opts *Options) renderOptions(cells img2mosaic.RenderOptions) img2mosaic.RenderOptions {
	scaler, _ := imageutil.ParseInterpolation(opts.Scaler)
	cells.Scaler = scaler
	cells.Padding = opts.Padding
	cells.Stroke = opts.Stroke
	cells.Circle = opts.Circle
	cells.Tint = uint8(opts.Tint)
	cells.Workers = opts.Workers
	return cells
}
