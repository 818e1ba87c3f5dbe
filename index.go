package vectro

// IndexKind represents the storage strategy behind a search index.
type IndexKind string

const (
	// FlatKind performs exhaustive search over raw float32 vectors.
	// Full precision, full recall.
	FlatKind IndexKind = "flat"

	// QuantizedKind performs exhaustive search over scalar-quantized codes,
	// trading a bounded amount of precision for a much smaller footprint.
	QuantizedKind IndexKind = "quantized"
)

// SearchResult is one ranked hit: the stored vector's insertion position in
// the source dataset, its identifier, and its cosine similarity to the query.
type SearchResult struct {
	Index      int
	ID         string
	Similarity float32
}

// VectorIndex is the common read-only contract of the engine's indices.
//
// An index is built once from a dataset snapshot and immutable thereafter,
// so every method is safe for unsynchronized concurrent use.
type VectorIndex interface {
	// SearchVector returns the topK stored vectors most similar to query,
	// descending by cosine similarity, ties broken by ascending insertion
	// index. topK greater than Len() clamps to Len().
	//
	// Returns ErrDimensionMismatch for a query of the wrong length and
	// ErrInvalidArgument for topK <= 0.
	SearchVector(query []float32, topK int) ([]SearchResult, error)

	// BatchSearch applies SearchVector to each query independently,
	// preserving query order. Queries are searched in parallel; the first
	// per-query error fails the whole call with no partial results.
	BatchSearch(queries [][]float32, topK int) ([][]SearchResult, error)

	// Search creates a fluent search builder for this index.
	Search() *Search

	// Len returns the number of indexed vectors.
	Len() int

	// Dim returns the dimensionality of indexed vectors.
	Dim() int

	// Kind returns the index kind.
	Kind() IndexKind
}
