package vectro

import "fmt"

// SaveIndex would persist a built index to disk. Index persistence is a
// placeholder: datasets persist (Dataset.Save / LoadDataset) and indices are
// rebuilt from them, which for brute-force indices costs one normalization
// or quantization pass.
//
// Always returns ErrNotImplemented (wrapped).
func SaveIndex(index VectorIndex, path string) error {
	return fmt.Errorf("save %s index to %s: %w", index.Kind(), path, ErrNotImplemented)
}

// LoadIndex would load a persisted index from disk. See SaveIndex.
//
// Always returns ErrNotImplemented (wrapped).
func LoadIndex(path string) (VectorIndex, error) {
	return nil, fmt.Errorf("load index from %s: %w", path, ErrNotImplemented)
}
