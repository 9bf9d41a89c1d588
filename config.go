package rrtplan

import (
	"math/rand"

	"github.com/motionkit/rrtplan/logging"
)

// StepLength is one entry of an edge-length schedule: extend the tree by
// Length, Count times, before moving to the schedule's next entry.
type StepLength struct {
	Length float64
	Count  int
}

// Schedule is an ordered edge-length schedule, consumed one StepLength at a
// time as a planner iterates. RRT-Connect only ever uses the first entry's
// Length (see NewRRTConnect).
type Schedule []StepLength

// Config carries the tunables shared by every planner in this package.
type Config struct {
	// Schedule is the edge-length schedule driving tree expansion.
	Schedule Schedule
	// Resolution is the maximum spacing, in configuration-space distance,
	// between consecutive collision-check points along a candidate edge.
	Resolution float64
	// Prc is the probability, after each successful extension, of
	// attempting to connect the newest vertex directly to the goal. It
	// gates the connection attempt, not the sample drawn to produce that
	// vertex. Only RRT and RRT* use Prc: RRT-Connect and the bidirectional
	// RRT* planners solve by joining their two trees, not by a fixed-goal
	// connection attempt.
	Prc float64
	// MaxSamples bounds the number of samples a planner will draw. A planner
	// that has found no path by then returns a nil path.
	MaxSamples int
	// RewireCount, if non-nil, caps the number of nearby vertices RRT*-style
	// planners consider during choose-parent/rewire to min(vertexCount,
	// *RewireCount). If nil, every vertex in the tree is considered.
	RewireCount *int
	// Logger receives diagnostic output. A nil Logger is a valid no-op.
	Logger logging.Logger
	// Rand drives the planner's own random draws (the Prc gate and lazy
	// shortening). If nil, a Rand with the fixed seed 1 is used.
	Rand *rand.Rand
}

func (c Config) validate() error {
	if c.Resolution <= 0 {
		return ErrBadResolution
	}
	if c.Prc < 0 || c.Prc > 1 {
		return ErrBadPrc
	}
	if len(c.Schedule) == 0 {
		return ErrEmptySchedule
	}
	total := 0
	for _, s := range c.Schedule {
		if s.Length <= 0 || s.Count < 0 {
			return ErrBadScheduleEntry
		}
		total += s.Count
	}
	if total == 0 {
		return ErrEmptySchedule
	}
	if c.RewireCount != nil && *c.RewireCount < 0 {
		return ErrBadRewireCount
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(1))
	}
	return c
}

// rewireCountFor returns the effective rewire count given the current
// vertex count v: unbounded (v itself) when RewireCount is unset, otherwise
// min(v, *RewireCount).
//
// This is the corrected version of the reference implementation's
// `if not rewire_count: rewire_count = len(tree.vertices)` check, which
// conflated "unset" with "explicitly zero" because Python's falsiness
// treats 0 the same as None. Config.RewireCount is a *int specifically so
// those two cases are distinguishable here.
func (c Config) rewireCountFor(v int) int {
	if c.RewireCount == nil {
		return v
	}
	if v < *c.RewireCount {
		return v
	}
	return *c.RewireCount
}
