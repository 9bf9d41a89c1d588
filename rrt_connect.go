package rrtplan

import (
	"context"
	"math"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// extendState is the three-way outcome of a single RRT-Connect extend step.
type extendState int

const (
	trapped extendState = iota
	advanced
	reached
)

// reachedTolerance is the L1-distance threshold extend uses to decide a
// step has arrived at its target.
//
// This is deliberately an L1 (Manhattan) comparison against a fixed 1e-2
// threshold, not an L2 comparison scaled to the space's resolution. That is
// an odd pairing — L2 is used everywhere else in this package — but it's
// exactly what the reference algorithm this planner is translated from
// does, and changing it would silently change which steps count as
// "reached" versus "advanced" for any caller relying on this planner's
// existing behavior. Preserved intentionally; do not "fix" to L2.
const reachedTolerance = 1e-2

func l1Distance(a, b geometry.Point) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// rrtConnectPlanner is the bidirectional, single-step RRT-Connect planner:
// one tree extends a single step toward a sampled target, then the other
// tree repeatedly extends toward that new vertex until it reaches it or
// gets trapped; the trees then swap roles.
type rrtConnectPlanner struct {
	*planner
	treeA, treeB *tree
	stepLen      float64
}

// NewRRTConnect returns a Planner implementing RRT-Connect. Only the first
// entry of cfg.Schedule is used: RRT-Connect takes a single scalar step
// length rather than a multi-entry schedule.
func NewRRTConnect(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (Planner, error) {
	base, err := newPlanner(ss, start, goal, cfg)
	if err != nil {
		return nil, err
	}
	treeA := newTree(ss.Dims())
	treeA.addVertex(start)
	treeB := newTree(ss.Dims())
	treeB.addVertex(goal)

	return &rrtConnectPlanner{
		planner: base,
		treeA:   treeA,
		treeB:   treeB,
		stepLen: cfg.Schedule[0].Length,
	}, nil
}

func (p *rrtConnectPlanner) Trees() []Diagnostic {
	return []Diagnostic{diagnosticOf(p.treeA), diagnosticOf(p.treeB)}
}

// extend attempts to grow tr by one step toward target.
func (p *rrtConnectPlanner) extend(tr *tree, target geometry.Point) (extendState, int) {
	qNew, nearestID, ok := p.newAndNear(tr, target, p.stepLen)
	if !ok {
		return trapped, 0
	}
	newID, ok := p.connectToPoint(tr, nearestID, qNew)
	if !ok {
		return trapped, 0
	}
	if l1Distance(qNew, target) < reachedTolerance {
		return reached, newID
	}
	return advanced, newID
}

// connect repeatedly extends tr toward target until it reaches target or
// gets trapped.
func (p *rrtConnectPlanner) connect(tr *tree, target geometry.Point) (extendState, int) {
	for {
		state, id := p.extend(tr, target)
		if state != advanced {
			return state, id
		}
	}
}

func (p *rrtConnectPlanner) Search(ctx context.Context) (Path, error) {
	if p.degenerate {
		return Path{p.xInit}, nil
	}
	treeA, treeB := p.treeA, p.treeB
	// swapped tracks whether treeA is currently rooted at xGoal (true) or
	// xInit (false), so the returned path is always start-to-goal
	// regardless of how many swaps have happened.
	swapped := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.samplesTaken >= p.cfg.MaxSamples {
			if path, ok := p.finalConnectAttempt(treeA, treeB, swapped); ok {
				return path, nil
			}
			if path, ok := p.finalConnectAttempt(treeB, treeA, !swapped); ok {
				return path, nil
			}
			return nil, nil
		}

		target := p.sampleTarget()
		state, newIDA := p.extend(treeA, target)
		if state != trapped {
			state2, newIDB := p.connect(treeB, treeA.point(newIDA))
			if state2 == reached {
				return p.buildPath(treeA, newIDA, treeB, newIDB, swapped), nil
			}
		}
		treeA, treeB = treeB, treeA
		swapped = !swapped
	}
}

// finalConnectAttempt makes one forced, unconditional attempt to join treeA
// and treeB before the planner gives up on an exhausted sample budget: it
// anchors on treeA's vertex nearest treeB's root and tries to grow treeB
// all the way to it.
func (p *rrtConnectPlanner) finalConnectAttempt(treeA, treeB *tree, swapped bool) (Path, bool) {
	if treeA.len() == 0 || treeB.len() == 0 {
		return nil, false
	}
	anchorID, ok := treeA.nearest(treeB.point(0))
	if !ok {
		return nil, false
	}
	state, idB := p.connect(treeB, treeA.point(anchorID))
	if state != reached {
		return nil, false
	}
	return p.buildPath(treeA, anchorID, treeB, idB, swapped), true
}

// buildPath stitches together the path from treeA's root to idA with the
// path from treeB's root to idB (reversed), accounting for which tree is
// currently rooted at the goal.
func (p *rrtConnectPlanner) buildPath(treeA *tree, idA int, treeB *tree, idB int, swapped bool) Path {
	pathA := treeA.reconstructPath(idA)
	pathB := treeB.reconstructPath(idB)

	startSide, goalSide := pathA, pathB
	if swapped {
		startSide, goalSide = pathB, pathA
	}

	out := make(Path, 0, len(startSide)+len(goalSide))
	out = append(out, startSide...)
	for i := len(goalSide) - 1; i >= 0; i-- {
		out = append(out, goalSide[i])
	}
	return out
}
