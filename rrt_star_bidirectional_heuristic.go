package rrtplan

import (
	"context"
	"math"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// pathVertex is one waypoint of a winning cross-tree path, tagged with the
// tree and vertex ID that produced it, so lazy shortening can rewire real
// parent pointers instead of only editing a flat point slice.
type pathVertex struct {
	tr *tree
	id int
}

func buildPathVertices(active *tree, activeID int, other *tree, otherID int, activeIsStartTree bool) []pathVertex {
	activeIDs := active.reconstructVertexIDs(activeID)
	otherIDs := other.reconstructVertexIDs(otherID)

	startTree, startIDs := active, activeIDs
	goalTree, goalIDs := other, otherIDs
	if !activeIsStartTree {
		startTree, startIDs = other, otherIDs
		goalTree, goalIDs = active, activeIDs
	}

	out := make([]pathVertex, 0, len(startIDs)+len(goalIDs))
	for _, id := range startIDs {
		out = append(out, pathVertex{startTree, id})
	}
	for i := len(goalIDs) - 1; i >= 0; i-- {
		out = append(out, pathVertex{goalTree, goalIDs[i]})
	}
	return out
}

func pointsOf(vertices []pathVertex) Path {
	if vertices == nil {
		return nil
	}
	out := make(Path, len(vertices))
	for i, v := range vertices {
		out[i] = v.tr.point(v.id)
	}
	return out
}

// rrtStarBidirectionalHeuristicPlanner extends RRT*-Bidirectional with two
// heuristics: before any solution has been found, rewiring is restricted to
// a single nearest neighbor (cheap, RRT-Connect-like growth, since there is
// no path yet worth optimizing); once a solution exists, rewiring widens to
// the configured rewire count. Once a solution exists, every iteration also
// runs one lazy-shortening draw against the current winning path (see
// lazyShorten).
type rrtStarBidirectionalHeuristicPlanner struct {
	*planner
	treeA, treeB  *tree
	solutionFound bool
}

// NewRRTStarBidirectionalHeuristic returns a Planner implementing
// RRT*-Bidirectional-Heuristic.
func NewRRTStarBidirectionalHeuristic(ss *space.SearchSpace, start, goal geometry.Point, cfg Config) (Planner, error) {
	base, err := newPlanner(ss, start, goal, cfg)
	if err != nil {
		return nil, err
	}
	treeA := newTree(ss.Dims())
	treeA.addVertex(start)
	treeB := newTree(ss.Dims())
	treeB.addVertex(goal)
	return &rrtStarBidirectionalHeuristicPlanner{planner: base, treeA: treeA, treeB: treeB}, nil
}

func (p *rrtStarBidirectionalHeuristicPlanner) Trees() []Diagnostic {
	return []Diagnostic{diagnosticOf(p.treeA), diagnosticOf(p.treeB)}
}

func (p *rrtStarBidirectionalHeuristicPlanner) rewireCandidates(tr *tree, at geometry.Point) []int {
	if !p.solutionFound {
		return p.nearbyK(tr, at, 1)
	}
	return p.nearby(tr, at)
}

func (p *rrtStarBidirectionalHeuristicPlanner) Search(ctx context.Context) (Path, error) {
	if p.degenerate {
		return Path{p.xInit}, nil
	}
	var bestVertices []pathVertex
	bestCost := math.Inf(1)
	active, other := p.treeA, p.treeB
	activeIsStartTree := true

	for {
		for _, q := range p.cfg.Schedule {
			for i := 0; i < q.Count; i++ {
				if err := ctx.Err(); err != nil {
					return pointsOf(bestVertices), err
				}
				if p.samplesTaken >= p.cfg.MaxSamples {
					bestVertices, bestCost = p.finalCrossConnect(bestVertices, bestCost)
					return pointsOf(bestVertices), nil
				}

				if bestVertices != nil {
					bestVertices, bestCost = p.lazyShorten(bestVertices, bestCost)
				}

				target := p.sampleTarget()
				qNew, nearestID, ok := p.newAndNear(active, target, q.Length)
				if ok {
					nearby := p.rewireCandidates(active, qNew)
					newID, added := p.chooseParentAndAdd(active, qNew, nearestID, nearby)
					if added {
						p.rewire(active, newID, nearby)

						if vertices, cost, found := p.tryConnect(active, newID, other, activeIsStartTree, bestCost); found {
							bestVertices, bestCost = vertices, cost
							p.solutionFound = true
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
// path cost improves on bestCost.
func (p *rrtStarBidirectionalHeuristicPlanner) tryConnect(active *tree, newID int, other *tree, activeIsStartTree bool, bestCost float64) ([]pathVertex, float64, bool) {
	k := p.cfg.rewireCountFor(other.len())
	nearID, cost, found := p.findCrossConnection(active, newID, other, bestCost, k)
	if !found {
		return nil, 0, false
	}
	return buildPathVertices(active, newID, other, nearID, activeIsStartTree), cost, true
}

// finalCrossConnect makes one last attempt to join the two trees before the planner gives up on an exhausted sample
// budget, trying both directions anchored on whichever vertex in the
// anchoring tree is nearest the other tree's root.
func (p *rrtStarBidirectionalHeuristicPlanner) finalCrossConnect(bestVertices []pathVertex, bestCost float64) ([]pathVertex, float64) {
	attempt := func(active, other *tree, activeIsStartTree bool) {
		if active.len() == 0 || other.len() == 0 {
			return
		}
		anchorID, ok := active.nearest(other.point(0))
		if !ok {
			return
		}
		if vertices, cost, found := p.tryConnect(active, anchorID, other, activeIsStartTree, bestCost); found {
			bestVertices, bestCost = vertices, cost
			p.solutionFound = true
		}
	}
	attempt(p.treeA, p.treeB, true)
	attempt(p.treeB, p.treeA, false)
	return bestVertices, bestCost
}

// lazyShorten draws two random indices into vertices and, if they land on
// the same tree and a direct collision-free edge between them exists,
// rewires that tree's real parent pointer so the contraction is reflected
// in the tree itself, then returns the contracted waypoint list and the
// incrementally updated cost. It runs once per iteration regardless of
// whether this iteration also found a new best path, and is a no-op on
// fewer than 3 waypoints or when the draw doesn't land on a contractable
// pair.
func (p *rrtStarBidirectionalHeuristicPlanner) lazyShorten(vertices []pathVertex, cost float64) ([]pathVertex, float64) {
	if len(vertices) < 3 {
		return vertices, cost
	}
	i := p.cfg.Rand.Intn(len(vertices) - 1)
	j := i + 1 + p.cfg.Rand.Intn(len(vertices)-i-1)
	if j-i < 2 {
		return vertices, cost
	}

	a, b := vertices[i], vertices[j]
	if a.tr != b.tr {
		return vertices, cost
	}
	if !p.space.CollisionFree(a.tr.point(a.id), b.tr.point(b.id), p.cfg.Resolution) {
		return vertices, cost
	}

	oldSegment := 0.0
	for k := i; k < j; k++ {
		oldSegment += segmentCost(vertices[k].tr.point(vertices[k].id), vertices[k+1].tr.point(vertices[k+1].id))
	}
	newSegment := segmentCost(a.tr.point(a.id), b.tr.point(b.id))
	if newSegment >= oldSegment {
		return vertices, cost
	}

	tr := a.tr
	rootward, leafward := a, b
	if tr.pathCost(a.id) > tr.pathCost(b.id) {
		rootward, leafward = b, a
	}
	tr.setParent(leafward.id, rootward.id)

	out := make([]pathVertex, 0, len(vertices)-(j-i-1))
	out = append(out, vertices[:i+1]...)
	out = append(out, vertices[j:]...)
	return out, cost - oldSegment + newSegment
}
