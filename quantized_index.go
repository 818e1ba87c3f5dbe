// This file implements the compressed search index.
//
// A QuantizedIndex stores scalar-quantized codes instead of raw floats and
// computes similarity against dequantized reconstructions. The query stays
// full precision; only the stored side is approximated. Ranking may diverge
// from the exact index for near-tied candidates, but for well-separated data
// the top result coincides with FlatIndex's.
//
// MEMORY LAYOUT:
// Codes for all vectors live in one dense flat byte array. The per-vector
// scale/offset reconstruction parameters live in fixed-size side arrays
// parallel to the code array, keeping the hot scan path cache-friendly
// rather than chasing per-vector headers.
package vectro

import (
	"fmt"

	"github.com/viterin/vek/vek32"
)

// Compile-time check that QuantizedIndex implements VectorIndex.
var _ VectorIndex = (*QuantizedIndex)(nil)

// QuantizedIndex is a compressed brute-force cosine similarity index.
//
// Built once from a dataset snapshot and immutable thereafter; safe for
// unsynchronized concurrent searches.
type QuantizedIndex struct {
	dim   int
	codec Quantizer
	ids   []string

	codes     []byte // n * CodeBytes(dim), row-major
	codeBytes int
	scales    []float32
	offsets   []float32

	// norms[i] is the L2 norm of row i's reconstruction, precomputed at
	// build time so each similarity is one dot product and one division.
	norms []float32

	// workers caps the parallel query pool; 0 means all available cores.
	workers int
}

// NewQuantizedIndex builds a compressed index from a snapshot of the
// dataset. An empty kind defaults to SQ8.
//
// Returns:
//   - ErrEmptyDataset (wrapped) if the dataset holds no vectors
//   - ErrUnknownCodecKind (wrapped) for an unrecognized kind
func NewQuantizedIndex(dataset *Dataset, kind CodecKind) (*QuantizedIndex, error) {
	if kind == "" {
		kind = SQ8
	}
	codec, err := NewQuantizer(kind)
	if err != nil {
		return nil, err
	}
	if dataset.Len() == 0 {
		return nil, fmt.Errorf("cannot build quantized index: %w", ErrEmptyDataset)
	}

	n, dim := dataset.Len(), dataset.Dim()
	idx := &QuantizedIndex{
		dim:       dim,
		codec:     codec,
		ids:       dataset.IDs(),
		codes:     make([]byte, n*codec.CodeBytes(dim)),
		codeBytes: codec.CodeBytes(dim),
		scales:    make([]float32, n),
		offsets:   make([]float32, n),
		norms:     make([]float32, n),
	}

	recon := make([]float32, dim)
	for i := 0; i < n; i++ {
		qv := codec.Quantize(dataset.At(i).Vector)
		copy(idx.codes[i*idx.codeBytes:], qv.Codes)
		idx.scales[i] = qv.Scale
		idx.offsets[i] = qv.Offset
		recon = codec.Dequantize(idx.quantizedRow(i), recon)
		idx.norms[i] = Norm(recon)
	}
	return idx, nil
}

// Len returns the number of indexed vectors.
func (idx *QuantizedIndex) Len() int { return len(idx.ids) }

// Dim returns the dimensionality of indexed vectors.
func (idx *QuantizedIndex) Dim() int { return idx.dim }

// Kind returns QuantizedKind.
func (idx *QuantizedIndex) Kind() IndexKind { return QuantizedKind }

// CodecKind returns the codec the index was built with.
func (idx *QuantizedIndex) CodecKind() CodecKind { return idx.codec.Kind() }

// SetWorkers caps the number of parallel query workers used by BatchSearch.
// Zero restores the default of all available cores.
func (idx *QuantizedIndex) SetWorkers(n int) { idx.workers = n }

func (idx *QuantizedIndex) searchLimit() int { return workerLimit(idx.workers) }

// quantizedRow assembles the QuantizedVector view of row i. The codes slice
// aliases the index's storage.
func (idx *QuantizedIndex) quantizedRow(i int) QuantizedVector {
	return QuantizedVector{
		Codes:  idx.codes[i*idx.codeBytes : (i+1)*idx.codeBytes],
		Scale:  idx.scales[i],
		Offset: idx.offsets[i],
	}
}

// Reconstruct returns the dequantized approximation of stored vector i as a
// fresh slice.
func (idx *QuantizedIndex) Reconstruct(i int) []float32 {
	return idx.codec.Dequantize(idx.quantizedRow(i), nil)
}

// CompressionRatio reports original bytes over compressed bytes for the
// stored vectors: n*D*4 for the float32 originals versus the code array plus
// the scale/offset side arrays. Greater than 1.0 for any non-trivial
// dataset; approaches 4.0 for SQ8 as D grows and the per-vector metadata
// amortizes.
func (idx *QuantizedIndex) CompressionRatio() float64 {
	original := float64(idx.Len()) * float64(idx.dim) * 4
	return original / float64(idx.MemoryUsageBytes())
}

// MemoryUsageBytes reports the bytes occupied by the stored codes plus the
// per-vector scale/offset metadata.
func (idx *QuantizedIndex) MemoryUsageBytes() uint64 {
	return uint64(len(idx.codes)) + 4*uint64(len(idx.scales)) + 4*uint64(len(idx.offsets))
}

// SearchVector returns the topK stored vectors most similar to query.
//
// The external contract is identical to FlatIndex.SearchVector (same
// ordering, same tie-break, same clamping policy, same errors), but each
// similarity is computed against the dequantized reconstruction of the
// stored vector. The query itself stays full precision.
func (idx *QuantizedIndex) SearchVector(query []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d: %w", topK, ErrInvalidArgument)
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(query), idx.dim, ErrDimensionMismatch)
	}

	q := Normalize(query)
	sims := make([]float32, idx.Len())
	recon := make([]float32, idx.dim)
	for i := range sims {
		if idx.norms[i] == 0 {
			continue // degenerate stored vector scores 0
		}
		recon = idx.codec.Dequantize(idx.quantizedRow(i), recon)
		sims[i] = clampUnit(vek32.Dot(q, recon) / idx.norms[i])
	}
	return rankTopK(sims, idx.ids, clampK(topK, idx.Len())), nil
}

// BatchSearch runs SearchVector for every query in parallel, preserving
// query order. Same contract as FlatIndex.BatchSearch.
func (idx *QuantizedIndex) BatchSearch(queries [][]float32, topK int) ([][]SearchResult, error) {
	return batchSearch(idx, queries, topK)
}
