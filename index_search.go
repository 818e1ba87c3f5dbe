package vectro

import "fmt"

// DefaultTopK is the number of results a Search returns when WithK is not
// called.
const DefaultTopK = 10

// Search is a fluent builder over an index's search operations.
//
// It exists for call sites that assemble a search incrementally (the HTTP
// handler, the CLI); SearchVector and BatchSearch remain the primary API.
//
// Example:
//
//	results, err := index.Search().
//	    WithQuery(query).
//	    WithK(5).
//	    Execute()
type Search struct {
	index   VectorIndex
	queries [][]float32
	k       int
}

// Search creates a search builder for this index.
func (idx *FlatIndex) Search() *Search {
	return &Search{index: idx, k: DefaultTopK}
}

// Search creates a search builder for this index.
func (idx *QuantizedIndex) Search() *Search {
	return &Search{index: idx, k: DefaultTopK}
}

// WithQuery sets a single query vector.
func (s *Search) WithQuery(query []float32) *Search {
	s.queries = [][]float32{query}
	return s
}

// WithQueries sets the query vectors for a batch search.
func (s *Search) WithQueries(queries ...[]float32) *Search {
	s.queries = queries
	return s
}

// WithK sets the number of results per query.
func (s *Search) WithK(k int) *Search {
	s.k = k
	return s
}

// Execute runs a single-query search and returns its ranked results.
// Exactly one query must have been configured.
func (s *Search) Execute() ([]SearchResult, error) {
	if len(s.queries) != 1 {
		return nil, fmt.Errorf("expected exactly one query, got %d: %w", len(s.queries), ErrInvalidArgument)
	}
	return s.index.SearchVector(s.queries[0], s.k)
}

// ExecuteBatch runs the configured queries as a batch search.
func (s *Search) ExecuteBatch() ([][]SearchResult, error) {
	if len(s.queries) == 0 {
		return nil, fmt.Errorf("no queries configured: %w", ErrInvalidArgument)
	}
	return s.index.BatchSearch(s.queries, s.k)
}
