package rrtplan

import (
	"context"
	"math"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// rrtStarBidirectionalPlanner runs RRT*'s choose-parent/rewire machinery on
// two trees (rooted at xInit and xGoal) that alternate whose turn it is to
// extend, attempting a cross-tree connection after every successful
// extension.
type rrtStarBidirectionalPlanner struct {
	*planner
	treeA, treeB *tree // treeA is xInit-rooted, treeB is xGoal-rooted
}

// NewRRTStarBidirectional returns a Planner implementing RRT*-Bidirectional.
func NewRRTStarBidirectional(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (Planner, error) {
	base, err := newPlanner(ss, start, goal, cfg)
	if err != nil {
		return nil, err
	}
	treeA := newTree(ss.Dims())
	treeA.addVertex(start)
	treeB := newTree(ss.Dims())
	treeB.addVertex(goal)
	return &rrtStarBidirectionalPlanner{planner: base, treeA: treeA, treeB: treeB}, nil
}

func (p *rrtStarBidirectionalPlanner) Trees() []Diagnostic {
	return []Diagnostic{diagnosticOf(p.treeA), diagnosticOf(p.treeB)}
}

func (p *rrtStarBidirectionalPlanner) Search(ctx context.Context) (Path, error) {
	if p.degenerate {
		return Path{p.xInit}, nil
	}
	var bestPath Path
	bestCost := math.Inf(1)
	active, other := p.treeA, p.treeB
	activeIsStartTree := true

	for {
		for _, q := range p.cfg.Schedule {
			for i := 0; i < q.Count; i++ {
				if err := ctx.Err(); err != nil {
					return bestPath, err
				}
				if p.samplesTaken >= p.cfg.MaxSamples {
					p.finalCrossConnect(&bestPath, &bestCost)
					return bestPath, nil
				}

				target := p.sampleTarget()
				qNew, nearestID, ok := p.newAndNear(active, target, q.Length)
				if ok {
					nearby := p.nearby(active, qNew)
					newID, added := p.chooseParentAndAdd(active, qNew, nearestID, nearby)
					if added {
						p.rewire(active, newID, nearby)

						if path, cost, found := p.tryConnect(active, newID, other, activeIsStartTree, bestCost); found {
							bestPath, bestCost = path, cost
						}
					}
				}

				active, other = other, active
				activeIsStartTree = !activeIsStartTree
			}
		}
	}
}

// tryConnect searches other's nearby candidates (nearest-first, capped at
// the planner's effective rewire count for other's size) for the first
// collision-free cross-tree edge to active's newly added vertex whose total
// path cost improves on bestCost. Path cost is the three-term sum:
//
//	path_cost(other, xNear) + segment_cost(xNear, xNew) + path_cost(active, xNew)
//
// which accounts for the full cost across both trees (as opposed to a
// two-term variant that silently drops xNear's own path back to its root).
func (p *rrtStarBidirectionalPlanner) tryConnect(active *tree, newID int, other *tree, activeIsStartTree bool, bestCost float64) (Path, float64, bool) {
	k := p.cfg.rewireCountFor(other.len())
	nearID, cost, found := p.findCrossConnection(active, newID, other, bestCost, k)
	if !found {
		return nil, 0, false
	}

	activePath := active.reconstructPath(newID)
	otherPath := other.reconstructPath(nearID)

	startPath, goalPath := activePath, otherPath
	if !activeIsStartTree {
		startPath, goalPath = otherPath, activePath
	}

	out := make(Path, 0, len(startPath)+len(goalPath))
	out = append(out, startPath...)
	for i := len(goalPath) - 1; i >= 0; i-- {
		out = append(out, goalPath[i])
	}
	return out, cost, true
}

// finalCrossConnect makes one last attempt to join the two trees before the planner gives up on an exhausted sample
// budget, trying both directions anchored on whichever vertex in the
// anchoring tree is nearest the other tree's root.
func (p *rrtStarBidirectionalPlanner) finalCrossConnect(bestPath *Path, bestCost *float64) {
	attempt := func(active, other *tree, activeIsStartTree bool) {
		if active.len() == 0 || other.len() == 0 {
			return
		}
		anchorID, ok := active.nearest(other.point(0))
		if !ok {
			return
		}
		if path, cost, found := p.tryConnect(active, anchorID, other, activeIsStartTree, *bestCost); found {
			*bestPath, *bestCost = path, cost
		}
	}
	attempt(p.treeA, p.treeB, true)
	attempt(p.treeB, p.treeA, false)
}
