package rrtplan

import (
	"runtime"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/logging"
	"github.com/motionkit/rrtplan/space"
)

// planner holds the state and helper operations shared by every planner
// variant in this package: sampling, steering, nearest-neighbor lookups,
// and path bookkeeping. Each concrete planner embeds *planner and adds its
// own Search loop and (for the bidirectional variants) cross-tree
// bookkeeping.
type planner struct {
	space  *space.SearchSpace
	xInit  geometry.Point
	xGoal  geometry.Point
	cfg    Config
	logger logging.Logger
	nm     *neighborManager

	// maxEdgeLength is the longest step length in cfg.Schedule: a candidate
	// vertex further than this from the goal is never worth a collision
	// check, since no single edge drawn from this schedule could span it.
	maxEdgeLength float64
	// degenerate marks xInit == xGoal: the trivial case where the start is
	// already the goal and no search is needed.
	degenerate bool

	samplesTaken int
}

func newPlanner(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (*planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(start) != ss.Dims() || len(goal) != ss.Dims() {
		return nil, ErrDimensionMismatch
	}
	if !ss.ObstacleFree(start) {
		return nil, ErrStartInCollision
	}
	if !ss.ObstacleFree(goal) {
		return nil, ErrGoalInCollision
	}
	cfg = cfg.withDefaults()

	maxEdgeLength := 0.0
	for _, s := range cfg.Schedule {
		if s.Length > maxEdgeLength {
			maxEdgeLength = s.Length
		}
	}

	return &planner{
		space:         ss,
		xInit:         start,
		xGoal:         goal,
		cfg:           cfg,
		logger:        cfg.Logger,
		nm:            &neighborManager{nCPU: runtime.GOMAXPROCS(0), logger: cfg.Logger},
		maxEdgeLength: maxEdgeLength,
		degenerate:    geometry.Distance(start, goal) == 0,
	}, nil
}

// sampleTarget draws the next extension target: a uniformly random free
// point. Goal-directedness comes from attemptGoalConnection, gated by
// cfg.Prc, not from sampling the goal itself.
func (p *planner) sampleTarget() geometry.Point {
	p.samplesTaken++
	return p.space.SampleFree()
}

// attemptGoalConnection reports whether the current iteration should try to
// connect its newest vertex to the goal. With probability cfg.Prc it does;
// force bypasses that probability gate. The final attempts planners make on
// an exhausted sample budget do not go through this gate at all.
func (p *planner) attemptGoalConnection(force bool) bool {
	if force {
		return true
	}
	return p.cfg.Prc > 0 && p.cfg.Rand.Float64() < p.cfg.Prc
}

// attemptConnectToGoal tries to join tr's vertex id to the goal with a
// single collision-free edge, returning the resulting path and its total
// cost on success.
func (p *planner) attemptConnectToGoal(tr *tree, id int) (Path, float64, bool) {
	if !p.canConnectToGoal(tr, id) {
		return nil, 0, false
	}
	goalID, ok := p.connectToPoint(tr, id, p.xGoal)
	if !ok {
		return nil, 0, false
	}
	return tr.reconstructPath(goalID), tr.pathCost(goalID), true
}

// finalizeBestPath makes one forced, unconditional attempt (bypassing prc)
// to connect tr's nearest-to-goal vertex to the goal. RRT* calls this right
// before returning on an exhausted sample budget (RRT makes the same attempt
// inline), so a solution within reach isn't missed just because prc never
// fired on it.
func (p *planner) finalizeBestPath(tr *tree, bestPath *Path, bestCost *float64) {
	nearID, ok := tr.nearest(p.xGoal)
	if !ok {
		return
	}
	if path, cost, ok := p.attemptConnectToGoal(tr, nearID); ok && cost < *bestCost {
		*bestPath, *bestCost = path, cost
	}
}

// newAndNear samples-and-steers toward target from tr's nearest vertex,
// returning the candidate new point, the ID of the vertex it would extend
// from, and whether the candidate is usable (obstacle-free, not already in
// the tree, and distinct from its prospective parent).
func (p *planner) newAndNear(tr *tree, target geometry.Point, stepLen float64) (geometry.Point, int, bool) {
	nearestID, ok := tr.nearest(target)
	if !ok {
		return nil, 0, false
	}
	near := tr.point(nearestID)
	qNew := geometry.Steer(p.space.Bounds(), near, target, stepLen)

	if geometry.Distance(qNew, near) == 0 {
		return nil, 0, false
	}
	if tr.countAt(qNew) > 0 {
		return nil, 0, false
	}
	if !p.space.ObstacleFree(qNew) {
		return nil, 0, false
	}
	return qNew, nearestID, true
}

// connectToPoint tries to add qNew to tr as a child of parentID, provided
// the straight-line edge between them is collision-free. It returns the new
// vertex's ID and true on success.
func (p *planner) connectToPoint(tr *tree, parentID int, qNew geometry.Point) (int, bool) {
	if !p.space.CollisionFree(tr.point(parentID), qNew, p.cfg.Resolution) {
		return 0, false
	}
	id := tr.addVertex(qNew)
	tr.addEdge(id, parentID)
	return id, true
}

// nearby returns the IDs of the vertices in tr nearest to at, capped at the
// planner's effective rewire count for tr's current size. at is the
// not-yet-inserted candidate point (qNew), not an existing tree vertex, so
// there is nothing of at's own to exclude from the result.
func (p *planner) nearby(tr *tree, at geometry.Point) []int {
	return p.nearbyK(tr, at, p.cfg.rewireCountFor(tr.len()))
}

// nearbyK is nearby with an explicit candidate cap, used by the heuristic
// bidirectional planner to shrink the candidate set before a solution has
// been found.
func (p *planner) nearbyK(tr *tree, at geometry.Point, k int) []int {
	if k <= 0 {
		return nil
	}
	return tr.nearestN(at, k)
}

// canConnectToGoal reports whether the vertex at id is within the longest
// configured edge length of the goal and can be joined to it by a single
// collision-free edge.
func (p *planner) canConnectToGoal(tr *tree, id int) bool {
	if geometry.Distance(tr.point(id), p.xGoal) > p.maxEdgeLength {
		return false
	}
	return p.space.CollisionFree(tr.point(id), p.xGoal, p.cfg.Resolution)
}

// findCrossConnection searches other's k nearest candidates to active's
// vertex newID, nearest-first, for the first collision-free cross-tree edge
// whose total path cost improves on bestCost. Shared by the bidirectional
// planners' cross-tree connect step.
func (p *planner) findCrossConnection(active *tree, newID int, other *tree, bestCost float64, k int) (int, float64, bool) {
	newPoint := active.point(newID)
	activeCost := active.pathCost(newID)
	for _, nearID := range other.nearestN(newPoint, k) {
		cost := other.pathCost(nearID) + segmentCost(other.point(nearID), newPoint) + activeCost
		if cost >= bestCost {
			continue
		}
		if !p.space.CollisionFree(other.point(nearID), newPoint, p.cfg.Resolution) {
			continue
		}
		return nearID, cost, true
	}
	return 0, 0, false
}

// segmentCost is the Euclidean length of a candidate edge; it is the
// building block of every cost calculation in this package (path cost is a
// sum of segment costs along a parent chain).
func segmentCost(a, b geometry.Point) float64 {
	return geometry.Distance(a, b)
}

// chooseParentAndAdd selects, among fallbackParent and nearby, the
// collision-free parent that minimizes path cost to qNew, adds qNew to tr
// under that parent, and returns the new vertex's ID. Shared by every
// RRT*-family planner's choose-parent step.
func (p *planner) chooseParentAndAdd(tr *tree, qNew geometry.Point, fallbackParent int, nearby []int) (int, bool) {
	candidates := append([]int{fallbackParent}, nearby...)
	costs := p.nm.costs(candidates, func(id int) float64 {
		return tr.pathCost(id) + segmentCost(tr.point(id), qNew)
	})

	bestIdx := -1
	bestCost := 0.0
	for i, c := range costs {
		if !p.space.CollisionFree(tr.point(candidates[i]), qNew, p.cfg.Resolution) {
			continue
		}
		if bestIdx == -1 || c < bestCost {
			bestIdx, bestCost = i, c
		}
	}
	if bestIdx == -1 {
		return 0, false
	}
	id := tr.addVertex(qNew)
	tr.addEdge(id, candidates[bestIdx])
	return id, true
}

// rewire re-parents any vertex in nearby to newID within tr when doing so
// strictly lowers that vertex's path cost and the connecting edge is
// collision-free. Shared by every RRT*-family planner's rewire step.
func (p *planner) rewire(tr *tree, newID int, nearby []int) {
	newCost := tr.pathCost(newID)
	for _, id := range nearby {
		candidateCost := newCost + segmentCost(tr.point(newID), tr.point(id))
		if candidateCost >= tr.pathCost(id) {
			continue
		}
		if !p.space.CollisionFree(tr.point(newID), tr.point(id), p.cfg.Resolution) {
			continue
		}
		tr.setParent(id, newID)
	}
}
