package vectro

import (
	"errors"
	"testing"
)

func TestSearchBuilder(t *testing.T) {
	idx, err := NewFlatIndex(newTestDataset(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("single query", func(t *testing.T) {
		results, err := idx.Search().WithQuery([]float32{1, 0}).WithK(2).Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 || results[0].ID != "a" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("default k", func(t *testing.T) {
		// DefaultTopK exceeds the dataset size, so clamping applies.
		results, err := idx.Search().WithQuery([]float32{1, 0}).Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected all 3 results under the default k, got %d", len(results))
		}
	})

	t.Run("batch", func(t *testing.T) {
		batch, err := idx.Search().
			WithQueries([]float32{1, 0}, []float32{0, 1}).
			WithK(1).
			ExecuteBatch()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(batch) != 2 || batch[0][0].ID != "a" || batch[1][0].ID != "b" {
			t.Errorf("unexpected batch results: %+v", batch)
		}
	})

	t.Run("no query configured", func(t *testing.T) {
		if _, err := idx.Search().Execute(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := idx.Search().ExecuteBatch(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("execute rejects multiple queries", func(t *testing.T) {
		_, err := idx.Search().
			WithQueries([]float32{1, 0}, []float32{0, 1}).
			Execute()
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSearchBuilderOnQuantizedIndex(t *testing.T) {
	idx, err := NewQuantizedIndex(newTestDataset(t, [][]float32{{1, 0}, {0, 1}}), SQ8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := idx.Search().WithQuery([]float32{0, 1}).WithK(1).Execute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].ID != "b" {
		t.Errorf("expected b first, got %s", results[0].ID)
	}
}
