package vectro

import (
	"errors"
	"strings"
	"testing"
)

func newQualityFixture(t *testing.T, n, dim int) ([][]float32, *QuantizedIndex) {
	t.Helper()
	dataset, err := GenerateRandomEmbeddings(n, dim, 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, err := NewQuantizedIndex(dataset, SQ8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return dataset.Vectors(), idx
}

func TestAnalyzeCompressionQuality(t *testing.T) {
	vectors, idx := newQualityFixture(t, 60, 64)

	metrics, err := AnalyzeCompressionQuality(vectors, idx, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metrics.SamplesAnalyzed != 40 {
		t.Errorf("expected 40 samples, got %d", metrics.SamplesAnalyzed)
	}
	// sq8 on normalized random vectors reconstructs with high fidelity.
	if metrics.AverageSimilarity <= 0.85 {
		t.Errorf("expected average similarity above 0.85, got %f", metrics.AverageSimilarity)
	}
	if metrics.MinSimilarity > metrics.AverageSimilarity || metrics.AverageSimilarity > metrics.MaxSimilarity {
		t.Errorf("min/avg/max ordering violated: %f / %f / %f",
			metrics.MinSimilarity, metrics.AverageSimilarity, metrics.MaxSimilarity)
	}
	if metrics.CompressionRatio <= 1.0 {
		t.Errorf("expected compression ratio above 1.0, got %f", metrics.CompressionRatio)
	}
	wantSavings := (1 - 1/metrics.CompressionRatio) * 100
	if metrics.MemorySavingsPercent != wantSavings {
		t.Errorf("expected savings %f, got %f", wantSavings, metrics.MemorySavingsPercent)
	}
}

func TestAnalyzeCompressionQualityClampsSamples(t *testing.T) {
	vectors, idx := newQualityFixture(t, 10, 16)

	metrics, err := AnalyzeCompressionQuality(vectors, idx, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.SamplesAnalyzed != 10 {
		t.Errorf("numSamples should clamp to the dataset size; got %d", metrics.SamplesAnalyzed)
	}
}

func TestAnalyzeCompressionQualityErrors(t *testing.T) {
	vectors, idx := newQualityFixture(t, 5, 8)

	if _, err := AnalyzeCompressionQuality(vectors, idx, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := AnalyzeCompressionQuality(nil, idx, 5); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
	bad := [][]float32{{1, 2, 3}} // wrong dimensionality for the index
	if _, err := AnalyzeCompressionQuality(bad, idx, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestGenerateQualityReport(t *testing.T) {
	vectors, idx := newQualityFixture(t, 50, 64)

	report, err := GenerateQualityReport(vectors, idx, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// sq8 over normalized vectors sits comfortably in the top grade, and
	// its ~3.5x ratio triggers the production recommendation.
	if report.QualityGrade != "A+" {
		t.Errorf("expected grade A+, got %s (avg %f)", report.QualityGrade, report.AverageSimilarity)
	}
	if !strings.Contains(report.Recommendation, "Recommended for production") {
		t.Errorf("unexpected recommendation: %s", report.Recommendation)
	}
	if report.MemoryUsageMB <= 0 || report.OriginalSizeEstimateMB <= report.MemoryUsageMB {
		t.Errorf("size fields inconsistent: %f MB from %f MB",
			report.MemoryUsageMB, report.OriginalSizeEstimateMB)
	}

	rendered := report.String()
	for _, want := range []string{"A+", "recommendation", "compression"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered report missing %q:\n%s", want, rendered)
		}
	}
}

func TestQualityGradeThresholds(t *testing.T) {
	// The grade boundaries are part of the contract.
	tests := []struct {
		similarity float64
		want       string
	}{
		{0.995, "A+"},
		{0.96, "A"},
		{0.92, "B"},
		{0.86, "C"},
		{0.5, "D"},
	}

	for _, tt := range tests {
		var grade string
		switch {
		case tt.similarity >= gradeAPlus:
			grade = "A+"
		case tt.similarity >= gradeA:
			grade = "A"
		case tt.similarity >= gradeB:
			grade = "B"
		case tt.similarity >= gradeC:
			grade = "C"
		default:
			grade = "D"
		}
		if grade != tt.want {
			t.Errorf("similarity %f: expected grade %s, got %s", tt.similarity, tt.want, grade)
		}
	}
}

func TestCompareRankings(t *testing.T) {
	dataset, err := GenerateClusteredEmbeddings(4, 15, 32, 0.05, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flat, err := NewFlatIndex(dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quantized, err := NewQuantizedIndex(dataset, SQ8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	queries := dataset.Vectors()[:10]
	overlap, err := CompareRankings(flat, quantized, queries, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if overlap.Queries != 10 || overlap.K != 5 {
		t.Errorf("unexpected dimensions: %+v", overlap)
	}
	if overlap.MeanRecall < 0.8 || overlap.MeanRecall > 1.0 {
		t.Errorf("expected mean recall in [0.8, 1.0] on separated clusters, got %f", overlap.MeanRecall)
	}
	if overlap.MinRecall > overlap.MeanRecall {
		t.Errorf("min recall %f exceeds mean %f", overlap.MinRecall, overlap.MeanRecall)
	}
}

func TestCompareRankingsErrors(t *testing.T) {
	_, idx := newQualityFixture(t, 5, 8)

	if _, err := CompareRankings(idx, idx, [][]float32{{1}}, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for topK 0, got %v", err)
	}
	if _, err := CompareRankings(idx, idx, nil, 3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty queries, got %v", err)
	}
}
