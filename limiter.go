package vectro

import (
	"runtime"
	"sort"
)

// searchLimiter is implemented by indices that carry a configured worker cap.
type searchLimiter interface {
	searchLimit() int
}

// poolLimit resolves the worker-pool size for an index's parallel
// operations: the index's configured cap when it has one, otherwise all
// available cores.
func poolLimit(idx VectorIndex) int {
	if l, ok := idx.(searchLimiter); ok {
		return l.searchLimit()
	}
	return runtime.GOMAXPROCS(0)
}

// workerLimit maps a configured worker count to an errgroup limit.
// Zero means all available cores.
func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// clampK bounds topK to the number of stored vectors. A request for more
// results than exist is satisfied with everything rather than rejected; this
// is the documented clamping policy of both index types.
func clampK(topK, n int) int {
	if topK > n {
		return n
	}
	return topK
}

// rankTopK turns a full similarity scan into the topK ranked results.
//
// Ordering contract: descending by similarity, ties broken by ascending
// insertion index. The tie-break makes results fully deterministic, so
// parallel and sequential execution always report identical rankings.
//
// sims[i] must be the similarity of stored vector i; ids maps positions to
// identifiers. topK is assumed pre-clamped to len(sims).
func rankTopK(sims []float32, ids []string, topK int) []SearchResult {
	order := make([]int, len(sims))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if sims[i] != sims[j] {
			return sims[i] > sims[j]
		}
		return i < j
	})

	results := make([]SearchResult, topK)
	for r := 0; r < topK; r++ {
		i := order[r]
		results[r] = SearchResult{Index: i, ID: ids[i], Similarity: sims[i]}
	}
	return results
}
