package rrtplan

import (
	"context"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// rrtPlanner is the plain (non-asymptotically-optimal) RRT planner: extend
// a single tree toward sampled targets, and periodically probe whether the
// newest vertex can reach the goal directly.
type rrtPlanner struct {
	*planner
	tr *tree
}

// NewRRT returns a Planner implementing the RRT algorithm.
func NewRRT(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (Planner, error) {
	base, err := newPlanner(ss, start, goal, cfg)
	if err != nil {
		return nil, err
	}
	tr := newTree(ss.Dims())
	tr.addVertex(start)
	return &rrtPlanner{planner: base, tr: tr}, nil
}

func (p *rrtPlanner) Trees() []Diagnostic {
	return []Diagnostic{diagnosticOf(p.tr)}
}

func (p *rrtPlanner) Search(ctx context.Context) (Path, error) {
	if p.degenerate {
		return Path{p.xInit}, nil
	}
	// The schedule is replayed from the top each time it's exhausted; the
	// sample budget, not the schedule length, is what bounds the search.
	for {
		for _, q := range p.cfg.Schedule {
			for i := 0; i < q.Count; i++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if p.samplesTaken >= p.cfg.MaxSamples {
					if nearID, ok := p.tr.nearest(p.xGoal); ok {
						if path, _, ok := p.attemptConnectToGoal(p.tr, nearID); ok {
							return path, nil
						}
					}
					return nil, nil
				}

				target := p.sampleTarget()
				qNew, nearestID, ok := p.newAndNear(p.tr, target, q.Length)
				if !ok {
					continue
				}
				newID, ok := p.connectToPoint(p.tr, nearestID, qNew)
				if !ok {
					continue
				}
				if p.attemptGoalConnection(false) {
					if path, _, ok := p.attemptConnectToGoal(p.tr, newID); ok {
						return path, nil
					}
				}
			}
		}
	}
}
