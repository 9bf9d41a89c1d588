package rrtplan

import (
	"sync"

	"go.uber.org/atomic"
	"go.viam.com/utils"

	"github.com/motionkit/rrtplan/logging"
)

// parallelNeighbors is the candidate-set size above which neighborManager
// fans distance/cost computation out across worker goroutines instead of
// running it in the calling goroutine. Below this size, goroutine setup
// overhead outweighs the win, matching the threshold the cBiRRT planner
// this package's neighbor manager is grounded on applies to its own nCPU
// gate.
const parallelNeighbors = 64

// neighborManager evaluates a per-candidate cost function across a set of
// vertex IDs, either serially or fanned out across nCPU worker goroutines.
// It is the one place this package's planners use more than one goroutine;
// the work is always read-only against the tree, so results are merged into
// a single owner slice before the caller proceeds; no tree state is ever
// mutated concurrently.
type neighborManager struct {
	nCPU   int
	logger logging.Logger
}

// costs evaluates cost(id) for every id in candidateIDs and returns the
// results in the same order.
func (nm *neighborManager) costs(candidateIDs []int, cost func(id int) float64) []float64 {
	out := make([]float64, len(candidateIDs))
	if len(candidateIDs) < parallelNeighbors || nm.nCPU < 2 {
		for i, id := range candidateIDs {
			out[i] = cost(id)
		}
		return out
	}

	var processed atomic.Int64
	var wg sync.WaitGroup
	chunk := (len(candidateIDs) + nm.nCPU - 1) / nm.nCPU
	for start := 0; start < len(candidateIDs); start += chunk {
		end := start + chunk
		if end > len(candidateIDs) {
			end = len(candidateIDs)
		}
		s, e := start, end
		wg.Add(1)
		utils.PanicCapturingGo(func() {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = cost(candidateIDs[i])
				processed.Inc()
			}
		})
	}
	wg.Wait()
	if nm.logger != nil {
		nm.logger.Debugf("neighborManager evaluated %d candidate costs across %d workers", processed.Load(), nm.nCPU)
	}
	return out
}

// nearestByCost returns the index into candidateIDs (not the vertex ID
// itself) whose cost is minimal, and false if candidateIDs is empty.
func (nm *neighborManager) nearestByCost(candidateIDs []int, cost func(id int) float64) (int, bool) {
	if len(candidateIDs) == 0 {
		return 0, false
	}
	costs := nm.costs(candidateIDs, cost)
	best := 0
	for i, c := range costs {
		if c < costs[best] {
			best = i
		}
	}
	return best, true
}
