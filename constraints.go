package img2mosaic

import (
	"fmt"
	"math"
)

// ConstraintConfig selects the placement policy applied on top of the
// nearest-color query for every grid cell.
type ConstraintConfig struct {
	// AdjacencyBan forbids a tile from repeating in a directly
	// neighboring cell.
	AdjacencyBan bool
	// DiversityRadius forbids a tile from repeating within this
	// Euclidean cell distance. 0 disables the check.
	DiversityRadius int
	// MaxUsage caps how many cells one tile may fill. 0 is unlimited.
	MaxUsage int
	// ConsumeOnUse removes a tile from the pool once it is placed.
	ConsumeOnUse bool
	// NoiseFactor is the probability of a randomized left descent at
	// each two-way decision of a tree query. Callers clamp it to [0, 1].
	NoiseFactor float64
}

// Validate reports the first out-of-range field as a ConfigError.
func (c ConstraintConfig) Validate() error {
	if c.DiversityRadius < 0 {
		return configErrorf("diversity_radius", "must not be negative, got %d", c.DiversityRadius)
	}
	if c.MaxUsage < 0 {
		return configErrorf("max_usage", "must not be negative, got %d", c.MaxUsage)
	}
	if math.IsNaN(c.NoiseFactor) || c.NoiseFactor < 0 || c.NoiseFactor > 1 {
		return configErrorf("noise", "must be within [0, 1], got %v", c.NoiseFactor)
	}
	return nil
}

// radius is the spatial exclusion radius in cells. An adjacency ban
// needs at least radius 1.
func (c ConstraintConfig) radius() int {
	if c.AdjacencyBan {
		return max(1, c.DiversityRadius)
	}
	return max(0, c.DiversityRadius)
}

// capActive reports whether a usage cap is in force.
func (c ConstraintConfig) capActive() bool {
	return c.MaxUsage > 0
}

// canUnstale reports whether every stale flag may be cleared between
// cells. Capped and consumed tiles must stay excluded for the whole run.
func (c ConstraintConfig) canUnstale() bool {
	return !c.capActive() && !c.ConsumeOnUse
}

// Unconstrained reports whether the policy reduces to a plain nearest
// color lookup.
func (c ConstraintConfig) Unconstrained() bool {
	return c.radius() == 0 && !c.capActive() && !c.ConsumeOnUse && c.NoiseFactor == 0
}

func (c ConstraintConfig) String() string {
	return fmt.Sprintf("adjacency_ban=%t diversity_radius=%d max_usage=%d consume=%t noise=%.3f",
		c.AdjacencyBan, c.DiversityRadius, c.MaxUsage, c.ConsumeOnUse, c.NoiseFactor)
}
