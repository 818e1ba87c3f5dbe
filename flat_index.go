// This file implements the exact (uncompressed) search index.
//
// HOW IT WORKS:
// For a query vector Q, the index:
//  1. Normalizes Q to unit length
//  2. Computes the dot product of Q against EVERY stored vector
//  3. Ranks all vectors and returns the top k
//
// Stored vectors are normalized once at build time, so cosine similarity at
// search time is a single dot product with no norms and no divisions.
//
// TIME COMPLEXITY:
//   - Build: O(n*d), one normalization pass over the snapshot
//   - Search: O(n*d + n*log n) per query
//
// GUARANTEES & TRADE-OFFS:
// ✓ 100% accuracy: always finds the true nearest neighbors
// ✓ No training phase
// ✗ Exhaustive scan; not sub-linear in dataset size
//
// Use the flat index when you must have exact results, or as the ground
// truth against which the quantized index is measured.
package vectro

import (
	"fmt"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"
)

// Compile-time check that FlatIndex implements VectorIndex.
var _ VectorIndex = (*FlatIndex)(nil)

// FlatIndex is an exact brute-force cosine similarity index.
//
// The build takes a snapshot of the dataset: vectors are copied into one
// dense row-major float32 array (structure-of-arrays, cache-friendly for the
// scan) and normalized to unit length. The snapshot is immutable, so
// concurrent searches need no locking.
type FlatIndex struct {
	dim  int
	ids  []string
	data []float32 // n rows of dim normalized components

	// workers caps the parallel query pool; 0 means all available cores.
	workers int
}

// NewFlatIndex builds an exact index from a snapshot of the dataset.
//
// Zero-magnitude vectors are stored as-is and score similarity 0 against
// every query rather than failing the build.
//
// Returns ErrEmptyDataset (wrapped) if the dataset holds no vectors.
func NewFlatIndex(dataset *Dataset) (*FlatIndex, error) {
	if dataset.Len() == 0 {
		return nil, fmt.Errorf("cannot build flat index: %w", ErrEmptyDataset)
	}

	n, dim := dataset.Len(), dataset.Dim()
	idx := &FlatIndex{
		dim:  dim,
		ids:  dataset.IDs(),
		data: make([]float32, n*dim),
	}
	for i := 0; i < n; i++ {
		row := idx.data[i*dim : (i+1)*dim]
		copy(row, dataset.At(i).Vector)
		NormalizeInPlace(row)
	}
	return idx, nil
}

// Len returns the number of indexed vectors.
func (idx *FlatIndex) Len() int { return len(idx.ids) }

// Dim returns the dimensionality of indexed vectors.
func (idx *FlatIndex) Dim() int { return idx.dim }

// Kind returns FlatKind.
func (idx *FlatIndex) Kind() IndexKind { return FlatKind }

// SetWorkers caps the number of parallel query workers used by BatchSearch.
// Zero restores the default of all available cores.
func (idx *FlatIndex) SetWorkers(n int) { idx.workers = n }

func (idx *FlatIndex) searchLimit() int { return workerLimit(idx.workers) }

// row returns the stored (normalized) vector at position i.
func (idx *FlatIndex) row(i int) []float32 {
	return idx.data[i*idx.dim : (i+1)*idx.dim]
}

// SearchVector returns the topK stored vectors most similar to query by
// cosine similarity, descending, ties broken by ascending insertion index.
//
// Policy: topK > Len() clamps to Len() rather than failing; asking for more
// neighbors than exist returns everything.
//
// Returns:
//   - ErrInvalidArgument (wrapped) if topK <= 0
//   - ErrDimensionMismatch (wrapped) if len(query) != Dim()
//
// A stored vector queried verbatim ranks itself first with similarity 1.0
// (within float tolerance), provided it has non-zero magnitude.
func (idx *FlatIndex) SearchVector(query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d: %w", topK, ErrInvalidArgument)
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), idx.dim, ErrDimensionMismatch)
	}

	q := Normalize(query)
	sims := make([]float32, idx.Len())
	for i := range sims {
		sims[i] = clampUnit(vek32.Dot(q, idx.row(i)))
	}
	return rankTopK(sims, idx.ids, clampK(topK, idx.Len())), nil
}

// BatchSearch runs SearchVector for every query, preserving query order.
//
// Queries are independent (no shared mutable state), so they fan out across
// a worker pool capped by SetWorkers, defaulting to all available cores.
// Results land in
// position-indexed slots; parallel execution never changes the reported
// ordering or ties relative to sequential execution.
//
// The call is all-or-nothing: the first per-query error fails the batch.
func (idx *FlatIndex) BatchSearch(queries [][]float32, topK int) ([][]SearchResult, error) {
	return batchSearch(idx, queries, topK)
}

// batchSearch is the shared parallel fan-out used by both index types.
func batchSearch(idx VectorIndex, queries [][]float32, topK int) ([][]SearchResult, error) {
	results := make([][]SearchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(poolLimit(idx))
	for i, query := range queries {
		g.Go(func() error {
			res, err := idx.SearchVector(query, topK)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
