package vectro

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestDatasetRoundtrip(t *testing.T) {
	original, err := GenerateRandomEmbeddings(25, 12, 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if _, err := original.WriteTo(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := NewDataset()
	if _, err := loaded.ReadFrom(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.Len() != original.Len() || loaded.Dim() != original.Dim() {
		t.Fatalf("shape mismatch: %d/%d vs %d/%d",
			loaded.Len(), loaded.Dim(), original.Len(), original.Dim())
	}
	// Raw persistence is lossless, bit for bit.
	for i := 0; i < original.Len(); i++ {
		want, got := original.At(i), loaded.At(i)
		if want.ID != got.ID {
			t.Errorf("record %d: id %q became %q", i, want.ID, got.ID)
		}
		for j := range want.Vector {
			if want.Vector[j] != got.Vector[j] {
				t.Errorf("record %d component %d: %f became %f", i, j, want.Vector[j], got.Vector[j])
			}
		}
	}
}

func TestDatasetQuantizedRoundtrip(t *testing.T) {
	original, err := GenerateRandomEmbeddings(15, 24, 33)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if _, err := original.WriteQuantizedTo(&buf, SQ8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := NewDataset()
	if _, err := loaded.ReadFrom(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.Len() != original.Len() {
		t.Fatalf("expected %d records, got %d", original.Len(), loaded.Len())
	}
	// Quantized persistence is lossy by at most the codec's error bound:
	// normalized components span at most [-1, 1], so half a rounding step
	// is 2/255/2.
	bound := 2.0 / 255 / 2 * 1.001
	for i := 0; i < original.Len(); i++ {
		want, got := original.At(i), loaded.At(i)
		for j := range want.Vector {
			diff := math.Abs(float64(got.Vector[j] - want.Vector[j]))
			if diff > bound {
				t.Errorf("record %d component %d: error %g exceeds %g", i, j, diff, bound)
			}
		}
	}
}

func TestDatasetSaveLoadFiles(t *testing.T) {
	original, err := GenerateRandomEmbeddings(10, 8, 35)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()

	rawPath := filepath.Join(dir, "raw.bin")
	if err := original.Save(rawPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := LoadDataset(rawPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Len() != 10 {
		t.Errorf("expected 10 records, got %d", raw.Len())
	}

	qPath := filepath.Join(dir, "quantized.bin")
	if err := original.SaveQuantized(qPath, SQ16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quantized, err := LoadDataset(qPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quantized.Len() != 10 || quantized.Dim() != 8 {
		t.Errorf("unexpected shape: %d/%d", quantized.Len(), quantized.Dim())
	}
}

func TestDatasetReadFromRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "wrong magic", data: []byte("NOPE\x01\x00\x00\x00")},
		{name: "truncated header", data: []byte("VE")},
		{name: "empty input", data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDataset()
			if _, err := d.ReadFrom(bytes.NewReader(tt.data)); err == nil {
				t.Error("expected an error for malformed input")
			}
		})
	}
}

// fileHeader assembles a VECD header with arbitrary field values, without
// compressing a payload (flags 0), so hostile headers can be tested directly.
func fileHeader(t *testing.T, flags, count, dim uint32) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(datasetMagic)
	for _, v := range []uint32{datasetFormatVersion, flags, count, dim} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("failed to build header: %v", err)
		}
	}
	return &buf
}

func TestDatasetReadFromRejectsHostileHeaders(t *testing.T) {
	t.Run("implausible dimensionality", func(t *testing.T) {
		buf := fileHeader(t, 0, 0xFFFFFFFF, 0xFFFFFFFF)
		if _, err := NewDataset().ReadFrom(buf); err == nil {
			t.Error("expected an error for an absurd dimensionality")
		}
	})

	t.Run("zero dimensionality with records", func(t *testing.T) {
		buf := fileHeader(t, 0, 5, 0)
		if _, err := NewDataset().ReadFrom(buf); err == nil {
			t.Error("expected an error for zero dimensionality")
		}
	})

	t.Run("oversized id length", func(t *testing.T) {
		buf := fileHeader(t, 0, 1, 2)
		if err := binary.Write(buf, binary.LittleEndian, uint32(1<<30)); err != nil {
			t.Fatalf("failed to build record: %v", err)
		}
		if _, err := NewDataset().ReadFrom(buf); err == nil {
			t.Error("expected an error for an oversized id length")
		}
	})

	t.Run("lying count fails at payload read", func(t *testing.T) {
		// A plausible header claiming far more records than the payload
		// holds must error out, not allocate for the claimed count.
		buf := fileHeader(t, 0, 1<<30, 4)
		if _, err := NewDataset().ReadFrom(buf); err == nil {
			t.Error("expected an error for a truncated payload")
		}
	})
}

func TestIndexPersistencePlaceholders(t *testing.T) {
	idx, err := NewFlatIndex(newTestDataset(t, [][]float32{{1, 0}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := SaveIndex(idx, "index.bin"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("SaveIndex: expected ErrNotImplemented, got %v", err)
	}
	if _, err := LoadIndex("index.bin"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("LoadIndex: expected ErrNotImplemented, got %v", err)
	}
}
