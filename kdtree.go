package img2mosaic

import (
	"math"
	"slices"
)

// kdDimensions is the number of Lab coordinates the index splits on.
const kdDimensions = 3

// KdIndex is a balanced KD-tree over tiles in Lab space. Each node holds
// the median tile along its split axis, which cycles L, a, b with depth.
//
// Unlike MatchTree the index has no exclusion support: it answers only
// unconstrained nearest-tile queries. It is immutable after construction
// and safe for concurrent queries.
type KdIndex struct {
	nodes []node[Tile]
	root  int
}

// BuildKdIndex builds a KdIndex from tiles. The input slice is not
// modified.
func BuildKdIndex(tiles []Tile) (*KdIndex, error) {
	if len(tiles) == 0 {
		return nil, ErrEmptyCatalog
	}

	work := slices.Clone(tiles)
	idx := &KdIndex{nodes: make([]node[Tile], 0, len(work))}

	// Each pending span of work becomes one node; link tells the
	// parent which slot to fill once the node exists.
	type span struct {
		lo, hi, depth int
		parent        int
		isLeft        bool
	}
	pending := []span{{lo: 0, hi: len(work), depth: 0, parent: noNode}}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		axis := s.depth % kdDimensions
		part := work[s.lo:s.hi]
		slices.SortStableFunc(part, func(a, b Tile) int {
			ca, cb := a.Lab.component(axis), b.Lab.component(axis)
			switch {
			case ca < cb:
				return -1
			case ca > cb:
				return 1
			}
			return 0
		})

		median := s.lo + (s.hi-s.lo)/2
		idx.nodes = append(idx.nodes, node[Tile]{
			content: work[median],
			left:    noNode,
			right:   noNode,
			parent:  s.parent,
		})
		cur := len(idx.nodes) - 1
		switch {
		case s.parent == noNode:
			idx.root = cur
		case s.isLeft:
			idx.nodes[s.parent].left = cur
		default:
			idx.nodes[s.parent].right = cur
		}

		if median+1 < s.hi {
			pending = append(pending, span{median + 1, s.hi, s.depth + 1, cur, false})
		}
		if s.lo < median {
			pending = append(pending, span{s.lo, median, s.depth + 1, cur, true})
		}
	}
	return idx, nil
}

// FindNearest returns the tile whose Lab color is nearest to target and
// its squared distance.
//
// The search is depth first with branch-and-bound pruning: the side of
// the split plane containing target is searched first, and the far side
// only when the squared offset from target to the plane is less than the
// best squared distance found so far.
func (k *KdIndex) FindNearest(target Lab) (Tile, float64) {
	type frame struct {
		idx, depth int
		// bound is the squared plane offset that must beat the best
		// distance for this subtree to be searched; -1 means always.
		bound float64
	}

	best := noNode
	bestDist := math.MaxFloat64
	stack := []frame{{idx: k.root, depth: 0, bound: -1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.bound >= 0 && f.bound >= bestDist {
			continue
		}

		n := &k.nodes[f.idx]
		if d := n.content.Lab.Distance(target); d < bestDist {
			best = f.idx
			bestDist = d
		}

		axis := f.depth % kdDimensions
		offset := target.component(axis) - n.content.Lab.component(axis)
		near, far := n.right, n.left
		if offset < 0 {
			near, far = n.left, n.right
		}

		// The far side is pushed first so it is popped only after the
		// whole near side has tightened bestDist.
		if far != noNode {
			stack = append(stack, frame{idx: far, depth: f.depth + 1, bound: offset * offset})
		}
		if near != noNode {
			stack = append(stack, frame{idx: near, depth: f.depth + 1, bound: -1})
		}
	}
	return k.nodes[best].content, bestDist
}

// Len returns the number of tiles in the index.
func (k *KdIndex) Len() int {
	return len(k.nodes)
}
