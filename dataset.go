package vectro

import "fmt"

// Embedding is the atomic unit of the engine: one fixed-length float32 vector
// tagged with a string identifier. The JSON form is used by the streaming
// ingest path and the HTTP API.
type Embedding struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// Dataset is an ordered, append-only collection of embeddings.
//
// Insertion order defines an implicit integer index 0..n-1 that all search
// results refer back to. The first insertion fixes the dimensionality D; every
// later insertion must match it. Identifiers need not be unique; lookups are
// by position.
//
// A Dataset is a builder, not a concurrent structure: it is not safe for
// concurrent writers. Once an index has been built from it, the index holds a
// snapshot and later Adds never affect that index.
type Dataset struct {
	dim        int
	embeddings []Embedding
}

// NewDataset creates an empty dataset. The dimensionality is fixed by the
// first vector added.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Add appends one embedding to the dataset. The vector is copied, so the
// caller may reuse its slice.
//
// Returns:
//   - ErrInvalidArgument (wrapped) if the vector is empty
//   - ErrDimensionMismatch (wrapped) if the dataset is non-empty and the
//     vector's length differs from the established dimensionality
func (d *Dataset) Add(id string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector: %w", ErrInvalidArgument)
	}
	if d.dim != 0 && len(vector) != d.dim {
		return fmt.Errorf("expected %d dimensions, got %d: %w", d.dim, len(vector), ErrDimensionMismatch)
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)

	if d.dim == 0 {
		d.dim = len(vec)
	}
	d.embeddings = append(d.embeddings, Embedding{ID: id, Vector: vec})
	return nil
}

// AddEmbedding appends an embedding. Equivalent to Add(e.ID, e.Vector).
func (d *Dataset) AddEmbedding(e Embedding) error {
	return d.Add(e.ID, e.Vector)
}

// Len returns the number of embeddings in the dataset. Zero is a valid state
// until an index build is attempted.
func (d *Dataset) Len() int {
	return len(d.embeddings)
}

// Dim returns the fixed dimensionality, or 0 for an empty dataset.
func (d *Dataset) Dim() int {
	return d.dim
}

// At returns the embedding at position i. The returned vector aliases the
// dataset's storage and must not be mutated.
func (d *Dataset) At(i int) Embedding {
	return d.embeddings[i]
}

// IDs returns the identifiers in insertion order.
func (d *Dataset) IDs() []string {
	ids := make([]string, len(d.embeddings))
	for i, e := range d.embeddings {
		ids[i] = e.ID
	}
	return ids
}

// Vectors returns the stored vectors in insertion order. The inner slices
// alias the dataset's storage and must not be mutated.
func (d *Dataset) Vectors() [][]float32 {
	vectors := make([][]float32, len(d.embeddings))
	for i, e := range d.embeddings {
		vectors[i] = e.Vector
	}
	return vectors
}
