package img2mosaic

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
)

const (
	// maxAttempts bounds the candidates tried for one cell.
	maxAttempts = 100
	// maxFallbackAttempts bounds the extra scan for a tile under its
	// usage cap once maxAttempts is spent.
	maxFallbackAttempts = 200

	neighborPenalty = 1000.0
	usagePenalty    = 50.0
)

// Selector chooses one tile per grid cell by querying a MatchTree and
// applying the ConstraintConfig on top: spatial exclusion of nearby
// repeats, usage caps and consume-on-use. Soft failures degrade to the
// best candidate found and are logged, never returned.
//
// A Selector belongs to a single mosaic run and is not safe for
// concurrent use; it mutates the tree's stale flags, the ledger and the
// grid.
type Selector struct {
	tree   *MatchTree
	grid   *Grid
	ledger *UsageLedger
	cfg    ConstraintConfig
	rng    *rand.Rand
	logger *slog.Logger
	stats  Stats

	// excluded holds leaves staled by spatial retries in the current
	// cell. They are released when the cell is done whenever a full
	// Unstale is not allowed.
	excluded []NodeID
}

type candidate struct {
	id    NodeID
	tile  Tile
	score float64
}

// NewSelector creates a Selector for one run over grid. The tree's noise
// decisions draw from rng.
func NewSelector(
	tree *MatchTree,
	grid *Grid,
	ledger *UsageLedger,
	cfg ConstraintConfig,
	rng *rand.Rand,
	logger *slog.Logger,
) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tree.Noise() > 0 && rng == nil {
		return nil, configErrorf("seed", "a random source is required when noise is %v", tree.Noise())
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Selector{
		tree:   tree,
		grid:   grid,
		ledger: ledger,
		cfg:    cfg,
		rng:    rng,
		logger: logger,
	}, nil
}

// Select picks the tile for cell (row, col) whose sampled color is
// target, records it in the grid and ledger, and returns the placement.
//
// Candidates come from repeated FindClosest calls. A candidate that
// repeats a tile placed within the spatial radius is penalized by
// 1000/(d+1) per matching neighbor at cell distance d, remembered if it
// has the best score so far, excluded, and the query retried. With a
// usage cap, a candidate that has reached the cap is excluded for the
// rest of the run, and others are penalized 50 per prior use.
//
// The only error is ErrExhausted, when no tile at all can be returned.
func (s *Selector) Select(row, col int, target RGB) (Placement, error) {
	defer s.releaseExcluded()

	lab := target.ToLab()
	radius := s.cfg.radius()
	if radius > 0 && s.cfg.canUnstale() {
		s.tree.Unstale()
	}

	var best candidate
	haveBest := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := s.query(lab)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			return Placement{}, err
		}

		tile := s.tree.Tile(id)
		c := candidate{id: id, tile: tile, score: tile.Lab.Distance(lab)}
		if s.cfg.capActive() {
			used := s.ledger.Count(tile.ID)
			if used >= s.cfg.MaxUsage {
				s.tree.SetStale(id, true)
				s.stats.CapDiscards++
				continue
			}
			c.score += float64(used) * usagePenalty
		}

		penalty := s.neighborPenalty(row, col, radius, tile.ID)
		if penalty == 0 {
			return s.accept(row, col, target, c, false), nil
		}
		c.score += penalty
		s.stats.SpatialRejects++
		if !haveBest || c.score < best.score {
			best = c
			haveBest = true
		}
		s.exclude(id)
	}

	if !s.cfg.capActive() {
		return s.nearestFallback(row, col, target, lab, radius)
	}
	return s.capFallback(row, col, target, lab, radius, best, haveBest)
}

// nearestFallback drops the spatial exclusions of this cell and takes
// the unconstrained nearest match.
func (s *Selector) nearestFallback(row, col int, target RGB, lab Lab, radius int) (Placement, error) {
	if s.cfg.canUnstale() {
		s.tree.Unstale()
	} else {
		s.releaseExcluded()
	}

	id, err := s.query(lab)
	if err != nil {
		return Placement{}, fmt.Errorf("cell (%d, %d): %w", row, col, err)
	}
	tile := s.tree.Tile(id)
	penalty := s.neighborPenalty(row, col, radius, tile.ID)
	c := candidate{id: id, tile: tile, score: tile.Lab.Distance(lab) + penalty}

	s.stats.Fallbacks++
	s.logger.Warn("no candidate satisfies spatial constraints, using nearest match",
		"row", row, "col", col, "tile", tile.ID, "attempts", maxAttempts)
	return s.accept(row, col, target, c, penalty > 0), nil
}

// capFallback keeps every exclusion in place and scans further for any
// tile still under its cap, ignoring spatial constraints. If none is
// found the best scored candidate seen for this cell is used.
func (s *Selector) capFallback(
	row, col int,
	target RGB,
	lab Lab,
	radius int,
	best candidate,
	haveBest bool,
) (Placement, error) {
	for attempt := 0; attempt < maxFallbackAttempts; attempt++ {
		id, err := s.query(lab)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			return Placement{}, err
		}

		tile := s.tree.Tile(id)
		used := s.ledger.Count(tile.ID)
		if used >= s.cfg.MaxUsage {
			s.tree.SetStale(id, true)
			s.stats.CapDiscards++
			continue
		}

		penalty := s.neighborPenalty(row, col, radius, tile.ID)
		c := candidate{
			id:    id,
			tile:  tile,
			score: tile.Lab.Distance(lab) + penalty + float64(used)*usagePenalty,
		}
		s.stats.Fallbacks++
		s.logger.Warn("spatial constraints relaxed to honor usage cap",
			"row", row, "col", col, "tile", tile.ID)
		return s.accept(row, col, target, c, penalty > 0), nil
	}

	if !haveBest {
		return Placement{}, fmt.Errorf("cell (%d, %d): %w", row, col, ErrExhausted)
	}
	s.stats.Fallbacks++
	s.logger.Warn("no tile under usage cap, using best scored candidate",
		"row", row, "col", col, "tile", best.tile.ID, "score", best.score)
	return s.accept(row, col, target, best, true), nil
}

func (s *Selector) query(lab Lab) (NodeID, error) {
	s.stats.Queries++
	return s.tree.FindClosest(lab, s.rng)
}

// neighborPenalty sums 1000/(d+1) over placed cells within radius of
// (row, col) that hold id, where d is the Euclidean cell distance.
func (s *Selector) neighborPenalty(row, col, radius int, id string) float64 {
	if radius <= 0 {
		return 0
	}
	penalty := 0.0
	limit := radius * radius
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			d2 := dr*dr + dc*dc
			if d2 == 0 || d2 > limit {
				continue
			}
			p := s.grid.At(row+dr, col+dc)
			if p == nil || p.Tile.ID != id {
				continue
			}
			penalty += neighborPenalty / (math.Sqrt(float64(d2)) + 1)
		}
	}
	return penalty
}

func (s *Selector) exclude(id NodeID) {
	s.tree.SetStale(id, true)
	s.excluded = append(s.excluded, id)
}

func (s *Selector) releaseExcluded() {
	for _, id := range s.excluded {
		s.tree.release(id)
	}
	s.excluded = s.excluded[:0]
}

// accept records the placement. Spatial exclusions are released before
// consume-on-use marks the chosen leaf, so the release cannot revive it.
func (s *Selector) accept(row, col int, target RGB, c candidate, violation bool) Placement {
	s.releaseExcluded()
	s.ledger.Increment(c.tile.ID)
	if s.cfg.ConsumeOnUse {
		s.tree.SetStale(c.id, true)
	}
	if violation {
		s.stats.SoftViolations++
	}
	s.stats.Cells++

	p := Placement{
		Row:       row,
		Col:       col,
		Tile:      c.tile,
		Target:    target,
		Score:     c.score,
		Violation: violation,
	}
	s.grid.set(p)
	return p
}

// Stats returns the counters accumulated so far.
func (s *Selector) Stats() Stats {
	return s.stats
}
