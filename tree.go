package rrtplan

import (
	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/internal/spatialindex"
)

// noParent marks a tree's root vertex: it has no parent edge.
const noParent = -1

// tree is a parent-pointer forest of configuration-space vertices, indexed
// for nearest-neighbor queries by a k-d tree. Vertices carry stable integer
// IDs (their index of insertion) rather than being keyed by their float64
// coordinates directly, since a Point is not a safe map key (float equality
// is brittle, and two distinct vertices may legitimately share a location).
//
// A tree only ever grows: vertices are never removed, and rewiring changes
// parent pointers in place without touching the spatial index.
type tree struct {
	index  *spatialindex.KDTree
	points []geometry.Point
	parent []int
}

func newTree(dims int) *tree {
	return &tree{index: spatialindex.NewKDTree(dims)}
}

// addVertex inserts p as a new root (no parent) and returns its vertex ID.
func (t *tree) addVertex(p geometry.Point) int {
	id := len(t.points)
	t.points = append(t.points, p)
	t.parent = append(t.parent, noParent)
	t.index.Insert(id, []float64(p))
	return id
}

// addEdge makes parentID the parent of childID.
func (t *tree) addEdge(childID, parentID int) {
	if childID < 0 || childID >= len(t.points) || parentID < 0 || parentID >= len(t.points) {
		internalInvariantViolation("addEdge referenced a vertex ID outside the tree")
	}
	t.parent[childID] = parentID
}

// setParent is an alias for addEdge used by rewiring call sites, where
// "change an existing vertex's parent" reads more naturally than "add an
// edge".
func (t *tree) setParent(childID, parentID int) {
	t.addEdge(childID, parentID)
}

// point returns the coordinates of vertex id.
func (t *tree) point(id int) geometry.Point {
	return t.points[id]
}

// parentOf returns the parent of id, and false if id is a root.
func (t *tree) parentOf(id int) (int, bool) {
	p := t.parent[id]
	return p, p != noParent
}

// len returns the number of vertices in the tree.
func (t *tree) len() int {
	return len(t.points)
}

// nearest returns the ID of the vertex closest to p, and false if the tree
// is empty.
func (t *tree) nearest(p geometry.Point) (int, bool) {
	return t.index.Nearest([]float64(p))
}

// nearestN returns the IDs of the k vertices closest to p, nearest-first.
func (t *tree) nearestN(p geometry.Point, k int) []int {
	return t.index.NearestN([]float64(p), k)
}

// countAt returns the number of vertices located exactly at p.
func (t *tree) countAt(p geometry.Point) int {
	return t.index.CountAt([]float64(p))
}

// pathCost sums edge lengths from the tree's root down to id.
func (t *tree) pathCost(id int) float64 {
	cost := 0.0
	cur := id
	for {
		parent, ok := t.parentOf(cur)
		if !ok {
			return cost
		}
		cost += geometry.Distance(t.point(cur), t.point(parent))
		cur = parent
	}
}

// reconstructVertexIDs walks parent pointers from id to its root and
// returns the vertex IDs from root to id, inclusive.
func (t *tree) reconstructVertexIDs(id int) []int {
	var reversed []int
	cur := id
	for {
		reversed = append(reversed, cur)
		if len(reversed) > len(t.points) {
			internalInvariantViolation("reconstructVertexIDs never reached a root")
		}
		parent, ok := t.parentOf(cur)
		if !ok {
			break
		}
		cur = parent
	}
	out := make([]int, len(reversed))
	for i, v := range reversed {
		out[len(reversed)-1-i] = v
	}
	return out
}

// reconstructPath walks parent pointers from id to its root and returns the
// points from root to id, inclusive.
func (t *tree) reconstructPath(id int) []geometry.Point {
	var reversed []geometry.Point
	cur := id
	for {
		reversed = append(reversed, t.point(cur))
		if len(reversed) > len(t.points) {
			internalInvariantViolation("reconstructPath never reached a root")
		}
		parent, ok := t.parentOf(cur)
		if !ok {
			break
		}
		cur = parent
	}
	out := make([]geometry.Point, len(reversed))
	for i, p := range reversed {
		out[len(reversed)-1-i] = p
	}
	return out
}
