// Package space implements the bounded, obstacle-populated configuration
// space that planners sample and collision-check against.
package space

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/internal/spatialindex"
)

// Obstacle is an axis-aligned hyperrectangle that planners must route
// around. Min and Max must have the same dimensionality as the SearchSpace,
// and Min[i] < Max[i] for every i.
type Obstacle struct {
	Min geometry.Point
	Max geometry.Point
}

func (o Obstacle) box() spatialindex.Box {
	return spatialindex.Box{Min: []float64(o.Min), Max: []float64(o.Max)}
}

func (o Obstacle) validate(dims int) error {
	if len(o.Min) != dims || len(o.Max) != dims {
		return errors.Errorf("obstacle has dimension %d/%d, want %d", len(o.Min), len(o.Max), dims)
	}
	for i := range o.Min {
		if !(o.Min[i] < o.Max[i]) {
			return errors.Errorf("obstacle dimension %d has Min %g >= Max %g", i, o.Min[i], o.Max[i])
		}
	}
	return nil
}

// SearchSpace is a bounded n-dimensional configuration space with a fixed,
// immutable set of hyperrectangle obstacles.
type SearchSpace struct {
	bounds    []geometry.Bound
	obstacles []Obstacle
	index     *spatialindex.RTree
	rng       *rand.Rand
}

// NewSearchSpace validates bounds and obstacles and builds a SearchSpace.
// src seeds the space's sampling random source; pass nil to use a source
// with the fixed seed 1.
func NewSearchSpace(bounds []geometry.Bound, obstacles []Obstacle, src rand.Source) (*SearchSpace, error) {
	if err := geometry.ValidateBounds(bounds); err != nil {
		return nil, errors.Wrap(err, "invalid search space")
	}

	var errs error
	for i, o := range obstacles {
		if err := o.validate(len(bounds)); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "obstacle %d", i))
		}
	}
	if errs != nil {
		return nil, errors.Wrap(errs, "invalid search space")
	}

	boxes := make([]spatialindex.Box, len(obstacles))
	for i, o := range obstacles {
		boxes[i] = o.box()
	}

	var rng *rand.Rand
	if src != nil {
		rng = rand.New(src)
	} else {
		rng = rand.New(rand.NewSource(1))
	}

	return &SearchSpace{
		bounds:    append([]geometry.Bound(nil), bounds...),
		obstacles: append([]Obstacle(nil), obstacles...),
		index:     spatialindex.NewRTree(len(bounds), boxes),
		rng:       rng,
	}, nil
}

// Dims returns the dimensionality of the space.
func (s *SearchSpace) Dims() int { return len(s.bounds) }

// Bounds returns the per-dimension bounds of the space.
func (s *SearchSpace) Bounds() []geometry.Bound {
	return append([]geometry.Bound(nil), s.bounds...)
}

// Sample draws a uniformly random point within bounds, ignoring obstacles.
func (s *SearchSpace) Sample() geometry.Point {
	p := make(geometry.Point, len(s.bounds))
	for i, b := range s.bounds {
		p[i] = b.Min + s.rng.Float64()*(b.Max-b.Min)
	}
	return p
}

// ObstacleFree reports whether x lies within bounds and does not fall
// inside any obstacle.
func (s *SearchSpace) ObstacleFree(x geometry.Point) bool {
	for i, b := range s.bounds {
		if x[i] < b.Min || x[i] > b.Max {
			return false
		}
	}
	return !s.index.ContainsPoint([]float64(x))
}

// SampleFree draws points via Sample until one is ObstacleFree. There is no
// retry cap, matching the reference algorithm: a search space with no free
// volume makes this call loop forever, which is a configuration error on
// the caller's part, not something this method should silently mask.
func (s *SearchSpace) SampleFree() geometry.Point {
	for {
		p := s.Sample()
		if s.ObstacleFree(p) {
			return p
		}
	}
}

// CollisionFree reports whether the straight-line segment from a to b is
// entirely obstacle-free, checked at points spaced at most r apart.
//
// Points are visited in iterative-deepening order (the two endpoints, then
// the segment midpoint, then quarter points, ...) rather than front-to-back,
// so a collision near the middle of a long segment is found quickly instead
// of after scanning every point before it.
func (s *SearchSpace) CollisionFree(a, b geometry.Point, r float64) bool {
	if r <= 0 {
		panic("space: resolution must be positive")
	}
	dist := geometry.Distance(a, b)
	if dist == 0 {
		return s.ObstacleFree(a)
	}
	n := int(math.Ceil(dist / r))
	if n < 1 {
		n = 1
	}

	checked := make([]bool, n+1)
	order := make([]int, 0, n+1)
	order = append(order, 0, n)

	// Build the iterative-deepening visiting order: halve the remaining gaps
	// repeatedly, skipping indices already scheduled.
	levels := [][2]int{{0, n}}
	for len(levels) > 0 {
		lo, hi := levels[0][0], levels[0][1]
		levels = levels[1:]
		if hi-lo < 2 {
			continue
		}
		mid := (lo + hi) / 2
		if mid != lo && mid != hi {
			order = append(order, mid)
		}
		levels = append(levels, [2]int{lo, mid}, [2]int{mid, hi})
	}

	for _, idx := range order {
		if checked[idx] {
			continue
		}
		checked[idx] = true
		t := float64(idx) / float64(n)
		p := interpolate(a, b, t)
		if !s.ObstacleFree(p) {
			return false
		}
	}
	for i, done := range checked {
		if done {
			continue
		}
		t := float64(i) / float64(n)
		p := interpolate(a, b, t)
		if !s.ObstacleFree(p) {
			return false
		}
	}
	return true
}

func interpolate(a, b geometry.Point, t float64) geometry.Point {
	out := make(geometry.Point, len(a))
	for i := range a {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}
