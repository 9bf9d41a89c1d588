package rrtplan

import (
	"context"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/motionkit/rrtplan/geometry"
	"github.com/motionkit/rrtplan/space"
)

// simple2DMap builds the map used throughout this file's end-to-end tests:
//
//	bounds from (-10,-10) to (10,10), one obstacle spanning (-4,0)-(4,10),
//	start at (-9,9), goal at (9,9) -- the direct line is blocked, so any
//	successful planner must route around the obstacle through y < 0.
func simple2DMap(t *testing.T) (*space.SearchSpace, geometry.Point, geometry.Point) {
	t.Helper()
	bounds := []geometry.Bound{{Min: -10, Max: 10}, {Min: -10, Max: 10}}
	obstacles := []space.Obstacle{{Min: geometry.Point{-4, 0}, Max: geometry.Point{4, 10}}}
	ss, err := space.NewSearchSpace(bounds, obstacles, rand.NewSource(7))
	test.That(t, err, test.ShouldBeNil)
	return ss, geometry.Point{-9, 9}, geometry.Point{9, 9}
}

func defaultConfig(seed int64) Config {
	n := 25
	return Config{
		Schedule:    Schedule{{Length: 1.5, Count: 20000}},
		Resolution:  0.25,
		Prc:         0.1,
		MaxSamples:  20000,
		RewireCount: &n,
		Rand:        rand.New(rand.NewSource(seed)),
	}
}

func assertValidPath(t *testing.T, ss *space.SearchSpace, path Path, start, goal geometry.Point) {
	t.Helper()
	test.That(t, len(path), test.ShouldBeGreaterThanOrEqualTo, 2)
	test.That(t, path[0], test.ShouldResemble, start)
	test.That(t, path[len(path)-1], test.ShouldResemble, goal)
	for _, pair := range geometry.Pairwise(path) {
		test.That(t, ss.CollisionFree(pair.From, pair.To, 0.25), test.ShouldBeTrue)
	}
}

func TestRRTFindsPathAroundObstacle(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRT(ss, start, goal, defaultConfig(1))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTStarFindsPathAroundObstacle(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTStar(ss, start, goal, defaultConfig(2))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTConnectFindsPathAroundObstacle(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTConnect(ss, start, goal, defaultConfig(3))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTStarBidirectionalFindsPathAroundObstacle(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTStarBidirectional(ss, start, goal, defaultConfig(4))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTStarBidirectionalHeuristicFindsPathAroundObstacle(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTStarBidirectionalHeuristic(ss, start, goal, defaultConfig(5))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTBudgetExhaustedReturnsNilPathNoError(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	cfg := defaultConfig(6)
	cfg.Schedule = Schedule{{Length: 0.01, Count: 3}}
	cfg.MaxSamples = 3
	p, err := NewRRT(ss, start, goal, cfg)
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldBeNil)
}

func TestRRTRejectsStartInCollision(t *testing.T) {
	ss, _, goal := simple2DMap(t)
	_, err := NewRRT(ss, geometry.Point{0, 5}, goal, defaultConfig(1))
	test.That(t, err, test.ShouldEqual, ErrStartInCollision)
}

func TestRRTRejectsGoalInCollision(t *testing.T) {
	ss, start, _ := simple2DMap(t)
	_, err := NewRRT(ss, start, geometry.Point{0, 5}, defaultConfig(1))
	test.That(t, err, test.ShouldEqual, ErrGoalInCollision)
}

func TestRRTRejectsDimensionMismatch(t *testing.T) {
	ss, start, _ := simple2DMap(t)
	_, err := NewRRT(ss, start, geometry.Point{1, 1, 1}, defaultConfig(1))
	test.That(t, err, test.ShouldEqual, ErrDimensionMismatch)
}

func TestRRTRejectsInvalidConfig(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	cfg := defaultConfig(1)
	cfg.Resolution = -1
	_, err := NewRRT(ss, start, goal, cfg)
	test.That(t, err, test.ShouldEqual, ErrBadResolution)
}

func TestTreesReturnsDiagnosticWithGrowingVertexSet(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRT(ss, start, goal, defaultConfig(9))
	test.That(t, err, test.ShouldBeNil)
	_, err = p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	diags := p.Trees()
	test.That(t, len(diags), test.ShouldEqual, 1)
	test.That(t, len(diags[0].Vertices), test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, diags[0].Vertices[0], test.ShouldResemble, start)
}

func TestRRTConnectTreesReturnsBothTrees(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTConnect(ss, start, goal, defaultConfig(3))
	test.That(t, err, test.ShouldBeNil)
	_, err = p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	diags := p.Trees()
	test.That(t, len(diags), test.ShouldEqual, 2)
}

func TestSearchRespectsCanceledContext(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRT(ss, start, goal, defaultConfig(1))
	test.That(t, err, test.ShouldBeNil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Search(ctx)
	test.That(t, err, test.ShouldNotBeNil)
}

// eightCube3DMap builds a 3D bounds-(-10,10)^3 map with eight small cube
// obstacles set back from the axes, one per octant, so a planner must find
// a path through 3D space rather than skirting a single 2D wall.
func eightCube3DMap(t *testing.T) (*space.SearchSpace, geometry.Point, geometry.Point) {
	t.Helper()
	bounds := []geometry.Bound{{Min: -10, Max: 10}, {Min: -10, Max: 10}, {Min: -10, Max: 10}}
	var obstacles []space.Obstacle
	for _, x := range []float64{-3, 3} {
		for _, y := range []float64{-3, 3} {
			for _, z := range []float64{-3, 3} {
				obstacles = append(obstacles, space.Obstacle{
					Min: geometry.Point{x - 1, y - 1, z - 1},
					Max: geometry.Point{x + 1, y + 1, z + 1},
				})
			}
		}
	}
	ss, err := space.NewSearchSpace(bounds, obstacles, rand.NewSource(11))
	test.That(t, err, test.ShouldBeNil)
	return ss, geometry.Point{-9, -9, -9}, geometry.Point{9, 9, 9}
}

func TestRRTStarFindsPathThroughEightCube3DMap(t *testing.T) {
	ss, start, goal := eightCube3DMap(t)
	p, err := NewRRTStar(ss, start, goal, defaultConfig(20))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

func TestRRTStarBidirectionalFindsPathThroughEightCube3DMap(t *testing.T) {
	ss, start, goal := eightCube3DMap(t)
	p, err := NewRRTStarBidirectional(ss, start, goal, defaultConfig(21))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	assertValidPath(t, ss, path, start, goal)
}

// infeasibleMap builds a map where a single obstacle spans the entire width
// of the bounds, so no path from start to goal can possibly exist.
func infeasibleMap(t *testing.T) (*space.SearchSpace, geometry.Point, geometry.Point) {
	t.Helper()
	bounds := []geometry.Bound{{Min: -10, Max: 10}, {Min: -10, Max: 10}}
	obstacles := []space.Obstacle{{Min: geometry.Point{-10, -1}, Max: geometry.Point{10, 1}}}
	ss, err := space.NewSearchSpace(bounds, obstacles, rand.NewSource(7))
	test.That(t, err, test.ShouldBeNil)
	return ss, geometry.Point{0, -9}, geometry.Point{0, 9}
}

func TestRRTStarReturnsNilPathNoErrorOnInfeasibleMap(t *testing.T) {
	ss, start, goal := infeasibleMap(t)
	cfg := defaultConfig(22)
	cfg.MaxSamples = 2000
	cfg.Schedule = Schedule{{Length: 1.5, Count: 2000}}
	p, err := NewRRTStar(ss, start, goal, cfg)
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldBeNil)
}

func TestRRTConnectReturnsNilPathNoErrorOnInfeasibleMap(t *testing.T) {
	ss, start, goal := infeasibleMap(t)
	cfg := defaultConfig(23)
	cfg.MaxSamples = 2000
	cfg.Schedule = Schedule{{Length: 1.5, Count: 2000}}
	p, err := NewRRTConnect(ss, start, goal, cfg)
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldBeNil)
}

// degeneratePlanners lists every constructor so the xInit == xGoal
// shortcut can be checked uniformly across all five planner variants.
var degeneratePlanners = []struct {
	name string
	new  func(*space.SearchSpace, geometry.Point, geometry.Point, Config) (Planner, error)
}{
	{"RRT", NewRRT},
	{"RRTStar", NewRRTStar},
	{"RRTConnect", NewRRTConnect},
	{"RRTStarBidirectional", NewRRTStarBidirectional},
	{"RRTStarBidirectionalHeuristic", NewRRTStarBidirectionalHeuristic},
}

func TestDegenerateStartEqualsGoalReturnsImmediately(t *testing.T) {
	ss, start, _ := simple2DMap(t)
	for i, tc := range degeneratePlanners {
		p, err := tc.new(ss, start, start, defaultConfig(int64(30+i)))
		test.That(t, err, test.ShouldBeNil)
		path, err := p.Search(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, path, test.ShouldResemble, Path{start})
	}
}

func TestDegenerateStartEqualsGoalTakesNoSamples(t *testing.T) {
	ss, start, _ := simple2DMap(t)
	p, err := NewRRT(ss, start, start, defaultConfig(31))
	test.That(t, err, test.ShouldBeNil)
	_, err = p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.(*rrtPlanner).samplesTaken, test.ShouldEqual, 0)
}

func TestReseededRunsProduceIdenticalPaths(t *testing.T) {
	ss1, start, goal := simple2DMap(t)
	p1, err := NewRRTStar(ss1, start, goal, defaultConfig(42))
	test.That(t, err, test.ShouldBeNil)
	path1, err := p1.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)

	ss2, _, _ := simple2DMap(t)
	p2, err := NewRRTStar(ss2, start, goal, defaultConfig(42))
	test.That(t, err, test.ShouldBeNil)
	path2, err := p2.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, path1, test.ShouldResemble, path2)
}

func TestPathWaypointsAreObstacleFree(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := NewRRTStar(ss, start, goal, defaultConfig(14))
	test.That(t, err, test.ShouldBeNil)
	path, err := p.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)
	for _, pt := range path {
		test.That(t, ss.ObstacleFree(pt), test.ShouldBeTrue)
	}
}

func TestRewireNeverIncreasesPathCost(t *testing.T) {
	ss, start, goal := simple2DMap(t)
	p, err := newPlanner(ss, start, goal, defaultConfig(15))
	test.That(t, err, test.ShouldBeNil)

	tr := newTree(2)
	root := tr.addVertex(geometry.Point{0, 0})
	a := tr.addVertex(geometry.Point{10, 0})
	tr.addEdge(a, root)
	b := tr.addVertex(geometry.Point{10, 1})
	tr.addEdge(b, root)
	costBefore := tr.pathCost(b)

	newID := tr.addVertex(geometry.Point{9, 1})
	tr.addEdge(newID, a)

	p.rewire(tr, newID, []int{b})
	test.That(t, tr.pathCost(b), test.ShouldBeLessThanOrEqualTo, costBefore)
}

func TestRRTStarCostNonIncreasingWithMoreSamples(t *testing.T) {
	ss1, start, goal := simple2DMap(t)
	cfgSmall := defaultConfig(13)
	cfgSmall.MaxSamples = 500
	cfgSmall.Schedule = Schedule{{Length: 1.5, Count: 500}}
	pSmall, err := NewRRTStar(ss1, start, goal, cfgSmall)
	test.That(t, err, test.ShouldBeNil)
	pathSmall, err := pSmall.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)

	ss2, _, _ := simple2DMap(t)
	pLarge, err := NewRRTStar(ss2, start, goal, defaultConfig(13))
	test.That(t, err, test.ShouldBeNil)
	pathLarge, err := pLarge.Search(context.Background())
	test.That(t, err, test.ShouldBeNil)

	if pathSmall == nil || pathLarge == nil {
		return
	}
	costOf := func(path Path) float64 {
		cost := 0.0
		for _, pair := range geometry.Pairwise(path) {
			cost += geometry.Distance(pair.From, pair.To)
		}
		return cost
	}
	test.That(t, costOf(pathLarge), test.ShouldBeLessThanOrEqualTo, costOf(pathSmall))
}
