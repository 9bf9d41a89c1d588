package rrtplan

import (
	"context"
	"math"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// rrtStarPlanner is the asymptotically-optimal RRT* planner: on each
// successful extension it chooses the cheapest collision-free parent among
// nearby vertices (not just the geometric nearest), then rewires any nearby
// vertex that would become cheaper by routing through the new vertex.
type rrtStarPlanner struct {
	*planner
	tr *tree
}

// NewRRTStar returns a Planner implementing the RRT* algorithm.
func NewRRTStar(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (Planner, error) {
	base, err := newPlanner(ss, start, goal, cfg)
	if err != nil {
		return nil, err
	}
	tr := newTree(ss.Dims())
	tr.addVertex(start)
	return &rrtStarPlanner{planner: base, tr: tr}, nil
}

func (p *rrtStarPlanner) Trees() []Diagnostic {
	return []Diagnostic{diagnosticOf(p.tr)}
}

func (p *rrtStarPlanner) Search(ctx context.Context) (Path, error) {
	if p.degenerate {
		return Path{p.xInit}, nil
	}
	var bestPath Path
	bestCost := math.Inf(1)

	for {
		for _, q := range p.cfg.Schedule {
			for i := 0; i < q.Count; i++ {
				if err := ctx.Err(); err != nil {
					return bestPath, err
				}
				if p.samplesTaken >= p.cfg.MaxSamples {
					p.finalizeBestPath(p.tr, &bestPath, &bestCost)
					return bestPath, nil
				}

				target := p.sampleTarget()
				qNew, nearestID, ok := p.newAndNear(p.tr, target, q.Length)
				if !ok {
					continue
				}

				nearby := p.nearby(p.tr, qNew)
				newID, ok := p.chooseParentAndAdd(p.tr, qNew, nearestID, nearby)
				if !ok {
					continue
				}
				p.rewire(p.tr, newID, nearby)

				if p.attemptGoalConnection(false) {
					if path, cost, ok := p.attemptConnectToGoal(p.tr, newID); ok && cost < bestCost {
						bestPath, bestCost = path, cost
					}
				}
			}
		}
	}
}
