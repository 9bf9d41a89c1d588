// Package rrtplan implements a family of sampling-based motion planners —
// RRT, RRT*, RRT-Connect, RRT*-Bidirectional, and
// RRT*-Bidirectional-Heuristic — over an axis-aligned n-dimensional
// configuration space populated by hyperrectangle obstacles (package
// space).
package rrtplan

import (
	"context"

	"github.com/motionkit/rrtplan/geometry"
)

// Path is an ordered sequence of waypoints from start to goal, inclusive.
type Path []geometry.Point

// Diagnostic exposes one tree's internal state for visualization and
// testing: every vertex, and for each non-root vertex, the index (into
// Vertices) of its parent.
type Diagnostic struct {
	Vertices []geometry.Point
	Parent   []int // Parent[i] == -1 marks a root
}

func diagnosticOf(tr *tree) Diagnostic {
	d := Diagnostic{
		Vertices: append([]geometry.Point(nil), tr.points...),
		Parent:   append([]int(nil), tr.parent...),
	}
	return d
}

// Planner searches for a collision-free path from a fixed start to a fixed
// goal within a budget of samples. A Planner is single-use: call Search at
// most once.
type Planner interface {
	// Search runs until ctx is canceled or it returns a path, or until the
	// configured sample budget is exhausted. RRT and RRT-Connect return as
	// soon as they find a path. The RRT* variants do not stop at their first
	// solution: they keep sampling until the budget is exhausted and return
	// the cheapest path found. A nil Path with a nil error means the budget
	// was exhausted without finding a solution; that is not treated as an
	// error condition.
	Search(ctx context.Context) (Path, error)
	// Trees returns the internal tree(s) built during Search, for
	// diagnostics and tests. Unidirectional planners return one tree;
	// bidirectional planners return two, start-tree first.
	Trees() []Diagnostic
}
