package rrtplan

import "github.com/pkg/errors"

// Sentinel configuration errors. These are returned from constructors when
// the caller's inputs are invalid; they are never returned once a planner
// has started searching.
var (
	ErrBadResolution    = errors.New("rrtplan: resolution must be positive")
	ErrBadPrc           = errors.New("rrtplan: prc must be within [0, 1]")
	ErrEmptySchedule    = errors.New("rrtplan: schedule must have at least one entry")
	ErrBadScheduleEntry = errors.New("rrtplan: schedule entries must have positive Length and non-negative Count")
	ErrStartInCollision = errors.New("rrtplan: start point is not obstacle-free")
	ErrGoalInCollision  = errors.New("rrtplan: goal point is not obstacle-free")
	ErrDimensionMismatch = errors.New("rrtplan: start/goal dimensionality does not match the search space")
	ErrBadRewireCount   = errors.New("rrtplan: rewire count must be non-negative")
)

// internalInvariantViolation panics with a descriptive message. It marks a
// state that must never occur given valid constructor inputs: a parent
// pointer into a vertex the tree doesn't have, a path reconstruction that
// never reaches its root, and similar. These are bugs in this package, not
// recoverable runtime conditions, so they are not reported as errors.
func internalInvariantViolation(msg string) {
	panic("rrtplan: internal invariant violation: " + msg)
}
