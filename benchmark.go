package vectro

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// BenchmarkResult summarizes a search performance run. Ephemeral value
// record; latencies are in milliseconds.
type BenchmarkResult struct {
	AverageLatencyMs float64
	MedianLatencyMs  float64
	P95LatencyMs     float64

	// QueriesPerSecond is successful queries divided by total wall-clock
	// seconds for the whole run.
	QueriesPerSecond float64

	SuccessfulQueries int
	FailedQueries     int

	// TotalRuns is len(queries) * numRuns.
	TotalRuns int
}

// BenchmarkSearchPerformance drives numRuns full passes of the query set
// against index and measures per-query wall-clock latency.
//
// Queries fan out across a worker pool honoring the index's configured
// worker cap, the same way BatchSearch executes. A failed individual query (for example a
// mismatched dimension slipped into the query set) never aborts the
// benchmark: it is counted in FailedQueries and excluded from the success
// tally and the latency aggregates.
//
// Returns ErrInvalidArgument (wrapped) for topK <= 0, numRuns <= 0, or an
// empty query set.
func BenchmarkSearchPerformance(index VectorIndex, queries [][]float32, topK, numRuns int) (BenchmarkResult, error) {
	if topK <= 0 {
		return BenchmarkResult{}, fmt.Errorf("topK must be positive, got %d: %w", topK, ErrInvalidArgument)
	}
	if numRuns <= 0 {
		return BenchmarkResult{}, fmt.Errorf("numRuns must be positive, got %d: %w", numRuns, ErrInvalidArgument)
	}
	if len(queries) == 0 {
		return BenchmarkResult{}, fmt.Errorf("no queries: %w", ErrInvalidArgument)
	}

	total := len(queries) * numRuns
	latencies := make([]float64, total)
	succeeded := make([]bool, total)

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(poolLimit(index))
	for run := 0; run < numRuns; run++ {
		for qi, query := range queries {
			slot := run*len(queries) + qi
			g.Go(func() error {
				qStart := time.Now()
				_, err := index.SearchVector(query, topK)
				if err != nil {
					return nil // counted, not propagated
				}
				latencies[slot] = float64(time.Since(qStart)) / float64(time.Millisecond)
				succeeded[slot] = true
				return nil
			})
		}
	}
	// Workers only ever return nil; Wait is for completion, not errors.
	_ = g.Wait()
	elapsed := time.Since(start)

	ok := make([]float64, 0, total)
	for i, lat := range latencies {
		if succeeded[i] {
			ok = append(ok, lat)
		}
	}

	result := BenchmarkResult{
		SuccessfulQueries: len(ok),
		FailedQueries:     total - len(ok),
		TotalRuns:         total,
	}
	if len(ok) > 0 {
		sort.Float64s(ok)
		result.AverageLatencyMs = stat.Mean(ok, nil)
		result.MedianLatencyMs = stat.Quantile(0.5, stat.Empirical, ok, nil)
		result.P95LatencyMs = stat.Quantile(0.95, stat.Empirical, ok, nil)
		result.QueriesPerSecond = float64(len(ok)) / elapsed.Seconds()
	}
	return result, nil
}
