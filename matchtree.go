package img2mosaic

import (
	"math"
	"math/rand/v2"
)

// noNode marks an absent child or parent link in a node arena.
const noNode = -1

// node is one slot of a tree arena. Links are arena indices, so parent
// back-references do not create ownership cycles. A node is a leaf iff
// both children are absent.
type node[T any] struct {
	content             T
	left, right, parent int
	stale               bool
}

func (n *node[T]) isLeaf() bool {
	return n.left == noNode && n.right == noNode
}

// NodeID addresses a node of a MatchTree.
type NodeID int

// MatchTree is an agglomerative binary tree over a tile catalog. Leaves
// hold catalog tiles; every internal node has exactly two children and
// holds a synthetic tile aggregating them.
//
// Tiles are inserted in catalog order by greedy descent to the nearest
// leaf, which is then split. Only the split node's aggregate is computed;
// ancestors above the insertion point keep the aggregate they had when
// they were created. Descent decisions near the root can therefore lag
// behind the true contents of deep subtrees, and the quality of matches
// depends on catalog order. No balance is guaranteed.
//
// The tree is built once and afterwards mutated only through stale
// flags. It is not safe for concurrent use.
type MatchTree struct {
	nodes  []node[Tile]
	root   int
	noise  float64
	leaves int
}

// BuildMatchTree builds a MatchTree from tiles in the given order. The
// noise factor is the probability, per two-way decision during a query,
// of descending left instead of toward the nearer child. It must lie in
// [0, 1].
func BuildMatchTree(tiles []Tile, noise float64) (*MatchTree, error) {
	if len(tiles) == 0 {
		return nil, ErrEmptyCatalog
	}
	if math.IsNaN(noise) || noise < 0 || noise > 1 {
		return nil, configErrorf("noise", "must be within [0, 1], got %v", noise)
	}

	t := &MatchTree{
		nodes: make([]node[Tile], 0, 2*len(tiles)-1),
		noise: noise,
	}
	if len(tiles) == 1 {
		t.root = t.newNode(tiles[0], noNode)
		t.leaves = 1
		return t, nil
	}

	t.root = t.newNode(mergeTiles(tiles[0], tiles[1]), noNode)
	left := t.newNode(tiles[0], t.root)
	right := t.newNode(tiles[1], t.root)
	t.nodes[t.root].left = left
	t.nodes[t.root].right = right
	t.leaves = 2

	for _, tile := range tiles[2:] {
		t.insert(tile)
	}
	return t, nil
}

func (t *MatchTree) newNode(content Tile, parent int) int {
	t.nodes = append(t.nodes, node[Tile]{
		content: content,
		left:    noNode,
		right:   noNode,
		parent:  parent,
	})
	return len(t.nodes) - 1
}

// insert descends to the leaf nearest to tile and replaces it with an
// internal node over the old leaf tile and the new one.
func (t *MatchTree) insert(tile Tile) {
	cur := t.root
	for !t.nodes[cur].isLeaf() {
		cur = t.nearerChild(cur, tile.Lab)
	}

	original := t.nodes[cur].content
	left := t.newNode(original, cur)
	right := t.newNode(tile, cur)

	n := &t.nodes[cur]
	n.left = left
	n.right = right
	n.content = mergeTiles(original, tile)
	t.leaves++
}

// nearerChild returns whichever child of an internal node has the
// aggregate color closer to target. Ties go right.
func (t *MatchTree) nearerChild(idx int, target Lab) int {
	n := &t.nodes[idx]
	dl := t.nodes[n.left].content.Lab.Distance(target)
	dr := t.nodes[n.right].content.Lab.Distance(target)
	if dl < dr {
		return n.left
	}
	return n.right
}

// FindClosest walks from the root to a non-stale leaf for target.
//
// At each internal node: if both children are stale the node itself is
// marked stale and the walk backs up to its parent; if one child is
// stale the walk enters the other; otherwise, with probability equal to
// the noise factor it enters the left child, else the child whose
// aggregate is nearer to target. Stale marks therefore propagate upward
// lazily, only as far as a walk discovers them.
//
// ErrExhausted is returned when the root has no available child. rng
// drives the noise decisions; it may be nil only when the noise factor
// is zero.
func (t *MatchTree) FindClosest(target Lab, rng *rand.Rand) (NodeID, error) {
	cur := t.root
	for {
		n := &t.nodes[cur]
		if n.isLeaf() {
			if n.stale {
				return noNode, ErrExhausted
			}
			return NodeID(cur), nil
		}

		leftStale := t.nodes[n.left].stale
		rightStale := t.nodes[n.right].stale
		switch {
		case leftStale && rightStale:
			if cur == t.root {
				return noNode, ErrExhausted
			}
			n.stale = true
			cur = n.parent
		case rightStale:
			cur = n.left
		case leftStale:
			cur = n.right
		case t.noise > 0 && rng.Float64() < t.noise:
			cur = n.left
		default:
			cur = t.nearerChild(cur, target)
		}
	}
}

// Tile returns the tile held by a node.
func (t *MatchTree) Tile(id NodeID) Tile {
	return t.nodes[id].content
}

// SetStale marks or clears the exclusion flag of a node.
func (t *MatchTree) SetStale(id NodeID, stale bool) {
	t.nodes[id].stale = stale
}

// IsStale reports whether a node is currently excluded.
func (t *MatchTree) IsStale(id NodeID) bool {
	return t.nodes[id].stale
}

// Unstale clears the stale flag of every node.
func (t *MatchTree) Unstale() {
	for i := range t.nodes {
		t.nodes[i].stale = false
	}
}

// release clears the stale flag of a node and of every ancestor above
// it. Ancestors that are still exhausted get re-marked by the next walk
// that reaches them.
func (t *MatchTree) release(id NodeID) {
	for cur := int(id); cur != noNode; cur = t.nodes[cur].parent {
		t.nodes[cur].stale = false
	}
}

// Len returns the number of leaves, which equals the catalog size.
func (t *MatchTree) Len() int {
	return t.leaves
}

// Noise returns the tree's noise factor.
func (t *MatchTree) Noise() float64 {
	return t.noise
}

// Leaves returns the ids of all leaf nodes in arena order.
func (t *MatchTree) Leaves() []NodeID {
	ids := make([]NodeID, 0, t.leaves)
	for i := range t.nodes {
		if t.nodes[i].isLeaf() {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *MatchTree) Depth() int {
	type frame struct{ idx, depth int }
	deepest := 0
	stack := []frame{{t.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[f.idx]
		if n.isLeaf() {
			deepest = max(deepest, f.depth)
			continue
		}
		stack = append(stack, frame{n.left, f.depth + 1}, frame{n.right, f.depth + 1})
	}
	return deepest
}
