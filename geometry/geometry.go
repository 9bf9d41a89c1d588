// Package geometry provides the vector arithmetic shared by the search
// space and the planners: Euclidean distance, bounded steering, and
// consecutive-pair iteration over a path.
package geometry

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Point is a configuration in an n-dimensional space. It is treated as
// immutable once constructed; callers must not mutate a Point obtained from
// a tree or search space in place.
type Point []float64

// Bound is the inclusive [Min, Max] extent of a single dimension.
type Bound struct {
	Min float64
	Max float64
}

// Clone returns a copy of p so callers can mutate it safely.
func (p Point) Clone() Point {
	out := make(Point, len(p))
	copy(out, p)
	return out
}

// Distance returns the Euclidean (L2) distance between a and b.
//
// Panics if a and b have different dimensionality; that is a programming
// error at every call site in this module, not a recoverable condition.
func Distance(a, b Point) float64 {
	if len(a) != len(b) {
		panic("geometry: mismatched point dimensionality")
	}
	diff := make([]float64, len(a))
	floats.SubTo(diff, []float64(a), []float64(b))
	return floats.Norm(diff, 2)
}

// Steer returns the point reached by moving from start toward goal by
// step, then clamping the result into bounds dimension-by-dimension.
//
// If start and goal coincide, Steer returns start unchanged: there is no
// direction to normalize.
//
// Steer always moves exactly step along that direction, even when step
// exceeds the distance from start to goal — it overshoots goal rather than
// stopping short of it. Bounds are enforced afterward by clamping.
func Steer(bounds []Bound, start, goal Point, step float64) Point {
	if len(start) != len(goal) || len(start) != len(bounds) {
		panic("geometry: mismatched point/bounds dimensionality")
	}
	dir := make([]float64, len(start))
	floats.SubTo(dir, []float64(goal), []float64(start))
	length := floats.Norm(dir, 2)
	if length == 0 {
		return start.Clone()
	}

	floats.Scale(step/length, dir)

	out := make(Point, len(start))
	floats.AddTo(out, []float64(start), dir)
	for i, b := range bounds {
		if out[i] < b.Min {
			out[i] = b.Min
		}
		if out[i] > b.Max {
			out[i] = b.Max
		}
	}
	return out
}

// Pair is a consecutive (from, to) pair produced by Pairwise.
type Pair struct {
	From Point
	To   Point
}

// Pairwise returns the consecutive pairs of seq: (seq[0], seq[1]),
// (seq[1], seq[2]), and so on. It returns an empty slice for paths of
// length 0 or 1.
func Pairwise(seq []Point) []Pair {
	if len(seq) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(seq)-1)
	for i := 0; i+1 < len(seq); i++ {
		pairs = append(pairs, Pair{From: seq[i], To: seq[i+1]})
	}
	return pairs
}

// ValidateBounds checks that there are at least 2 bounds and that every
// bound has Min < Max, returning an error for the first violation found.
func ValidateBounds(bounds []Bound) error {
	if len(bounds) < 2 {
		return errors.Errorf("geometry: need at least 2 dimensions, got %d", len(bounds))
	}
	for i, b := range bounds {
		if !(b.Min < b.Max) {
			return errors.Errorf("geometry: bound %d has Min %g >= Max %g", i, b.Min, b.Max)
		}
	}
	return nil
}
