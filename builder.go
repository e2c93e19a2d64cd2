package img2mosaic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// IndexKind names the index used to look up tiles.
type IndexKind string

const (
	// IndexMatchTree is the agglomerative tree; it supports every
	// constraint.
	IndexMatchTree IndexKind = "tree"
	// IndexKd is the balanced KD-tree; it serves unconstrained runs only.
	IndexKd IndexKind = "kd"
)

// Builder turns per-cell target colors into a grid of tiles. The index
// over the catalog is built once by NewBuilder and reused by every call
// to Build.
type Builder struct {
	// Configuration options
	Constraints ConstraintConfig
	Index       IndexKind
	Seed        uint64

	logger   *slog.Logger
	progress func(done, total int)

	catalog Catalog
	tree    *MatchTree
	kd      *KdIndex

	// Stats (private)
	buildTime time.Duration
}

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*Builder)

// WithConstraints sets the placement policy.
func WithConstraints(cfg ConstraintConfig) BuilderOption {
	return func(b *Builder) {
		b.Constraints = cfg
	}
}

// WithIndex selects the tile index.
func WithIndex(kind IndexKind) BuilderOption {
	return func(b *Builder) {
		b.Index = kind
	}
}

// WithSeed seeds the random source used by noise decisions.
func WithSeed(seed uint64) BuilderOption {
	return func(b *Builder) {
		b.Seed = seed
	}
}

// WithLogger sets the logger for warnings and progress details.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithProgress registers a callback invoked after every placed cell.
func WithProgress(f func(done, total int)) BuilderOption {
	return func(b *Builder) {
		b.progress = f
	}
}

// NewBuilder validates the options and builds the chosen index over
// catalog. An empty catalog fails here with ErrEmptyCatalog.
func NewBuilder(catalog Catalog, opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		Index:   IndexMatchTree,
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	if err := b.Constraints.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	switch b.Index {
	case IndexMatchTree:
		tree, err := BuildMatchTree(catalog, b.Constraints.NoiseFactor)
		if err != nil {
			return nil, fmt.Errorf("build match tree: %w", err)
		}
		b.tree = tree
		b.logger.Debug("match tree built", "tiles", tree.Len(), "depth", tree.Depth())
	case IndexKd:
		if !b.Constraints.Unconstrained() {
			return nil, configErrorf("index",
				"the kd index does not support constraints (%s)", b.Constraints)
		}
		kd, err := BuildKdIndex(catalog)
		if err != nil {
			return nil, fmt.Errorf("build kd index: %w", err)
		}
		b.kd = kd
		b.logger.Debug("kd index built", "tiles", kd.Len())
	default:
		return nil, configErrorf("index", "unknown index %q", b.Index)
	}
	b.buildTime = time.Since(start)
	return b, nil
}

// Result is the outcome of one mosaic run.
type Result struct {
	Grid   *Grid
	Ledger *UsageLedger
	Stats  Stats
}

// cellMatcher places one cell.
type cellMatcher interface {
	Select(row, col int, target RGB) (Placement, error)
	Stats() Stats
}

// Build chooses a tile for every cell of targets, a row-major grid of
// sampled colors, visiting cells in raster order. Every run starts from
// a fresh grid, ledger and random source, with all exclusions cleared.
func (b *Builder) Build(targets [][]RGB) (*Result, error) {
	rows := len(targets)
	if rows == 0 || len(targets[0]) == 0 {
		return nil, configErrorf("targets", "grid has no cells")
	}
	cols := len(targets[0])
	for r, row := range targets {
		if len(row) != cols {
			return nil, configErrorf("targets", "row %d has %d cells, want %d", r, len(row), cols)
		}
	}

	grid := NewGrid(rows, cols)
	ledger := NewUsageLedger()
	matcher, err := b.newMatcher(grid, ledger)
	if err != nil {
		return nil, err
	}

	total := rows * cols
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if _, err := matcher.Select(r, c, targets[r][c]); err != nil {
				return nil, err
			}
			if b.progress != nil {
				b.progress(r*cols+c+1, total)
			}
		}
	}

	return &Result{Grid: grid, Ledger: ledger, Stats: matcher.Stats()}, nil
}

func (b *Builder) newMatcher(grid *Grid, ledger *UsageLedger) (cellMatcher, error) {
	if b.kd != nil {
		return &kdMatcher{index: b.kd, grid: grid, ledger: ledger}, nil
	}
	b.tree.Unstale()
	rng := rand.New(rand.NewPCG(b.Seed, b.Seed^0x9e3779b97f4a7c15))
	sel, err := NewSelector(b.tree, grid, ledger, b.Constraints, rng, b.logger)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

// Tree returns the match tree, or nil when the kd index is in use.
func (b *Builder) Tree() *MatchTree {
	return b.tree
}

// BuildTime returns how long index construction took.
func (b *Builder) BuildTime() time.Duration {
	return b.buildTime
}

// kdMatcher places each cell at its unconstrained nearest tile.
type kdMatcher struct {
	index  *KdIndex
	grid   *Grid
	ledger *UsageLedger
	stats  Stats
}

func (m *kdMatcher) Select(row, col int, target RGB) (Placement, error) {
	tile, dist := m.index.FindNearest(target.ToLab())
	m.stats.Queries++
	m.stats.Cells++
	m.ledger.Increment(tile.ID)

	p := Placement{Row: row, Col: col, Tile: tile, Target: target, Score: dist}
	m.grid.set(p)
	return p, nil
}

func (m *kdMatcher) Stats() Stats {
	return m.stats
}
