// This file implements the quality analyzer: routines that measure how
// faithfully a quantized index reproduces the exact search results and the
// original vectors, and how much memory the compression saves.
package vectro

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// QualityMetrics summarizes reconstruction fidelity and size for a quantized
// index. Produced by AnalyzeCompressionQuality; ephemeral value record.
type QualityMetrics struct {
	// AverageSimilarity, MaxSimilarity and MinSimilarity aggregate the
	// cosine similarity between each sampled original vector and its top
	// reconstructed match in the quantized index.
	AverageSimilarity float64
	MaxSimilarity     float64
	MinSimilarity     float64

	CompressionRatio     float64
	MemorySavingsPercent float64
	SamplesAnalyzed      int
}

// AnalyzeCompressionQuality measures reconstruction fidelity by sampling.
//
// The first min(numSamples, len(vectors)) original vectors are each used as
// a query against the quantized index; the similarity of the returned top-1
// result's reconstruction to the original vector is recorded and aggregated.
// A vector that survives quantization well finds itself with similarity near
// 1.0.
//
// Returns:
//   - ErrInvalidArgument (wrapped) if numSamples <= 0
//   - ErrEmptyDataset (wrapped) if vectors is empty
//   - ErrDimensionMismatch if the vectors do not match the index
func AnalyzeCompressionQuality(vectors [][]float32, index *QuantizedIndex, numSamples int) (QualityMetrics, error) {
	if numSamples <= 0 {
		return QualityMetrics{}, fmt.Errorf("numSamples must be positive, got %d: %w", numSamples, ErrInvalidArgument)
	}
	if len(vectors) == 0 {
		return QualityMetrics{}, fmt.Errorf("no vectors to analyze: %w", ErrEmptyDataset)
	}

	samples := numSamples
	if samples > len(vectors) {
		samples = len(vectors)
	}

	sims := make([]float64, samples)
	for i := 0; i < samples; i++ {
		results, err := index.SearchVector(vectors[i], 1)
		if err != nil {
			return QualityMetrics{}, fmt.Errorf("sample %d: %w", i, err)
		}
		sims[i] = float64(results[0].Similarity)
	}

	ratio := index.CompressionRatio()
	return QualityMetrics{
		AverageSimilarity:    stat.Mean(sims, nil),
		MaxSimilarity:        floats.Max(sims),
		MinSimilarity:        floats.Min(sims),
		CompressionRatio:     ratio,
		MemorySavingsPercent: (1 - 1/ratio) * 100,
		SamplesAnalyzed:      samples,
	}, nil
}

// Quality grade thresholds on average similarity.
const (
	gradeAPlus = 0.99
	gradeA     = 0.95
	gradeB     = 0.90
	gradeC     = 0.85
)

// QualityReport wraps QualityMetrics with a letter grade and a recommendation
// for human consumption.
type QualityReport struct {
	QualityMetrics

	// QualityGrade is one of A+, A, B, C, D by average similarity.
	QualityGrade string

	// Recommendation is a short verdict combining similarity and
	// compression ratio.
	Recommendation string

	MemoryUsageMB          float64
	OriginalSizeEstimateMB float64
}

// GenerateQualityReport runs AnalyzeCompressionQuality and grades the result.
//
// Grades: average similarity >=0.99 is A+, >=0.95 A, >=0.90 B, >=0.85 C,
// anything lower D.
func GenerateQualityReport(vectors [][]float32, index *QuantizedIndex, numSamples int) (QualityReport, error) {
	metrics, err := AnalyzeCompressionQuality(vectors, index, numSamples)
	if err != nil {
		return QualityReport{}, err
	}

	var grade string
	switch {
	case metrics.AverageSimilarity >= gradeAPlus:
		grade = "A+"
	case metrics.AverageSimilarity >= gradeA:
		grade = "A"
	case metrics.AverageSimilarity >= gradeB:
		grade = "B"
	case metrics.AverageSimilarity >= gradeC:
		grade = "C"
	default:
		grade = "D"
	}

	var recommendation string
	switch {
	case metrics.AverageSimilarity >= 0.99 && metrics.CompressionRatio >= 3.0:
		recommendation = "Excellent compression with minimal quality loss. Recommended for production."
	case metrics.AverageSimilarity >= 0.95 && metrics.CompressionRatio >= 2.0:
		recommendation = "Good compression ratio with acceptable quality. Consider for most applications."
	case metrics.AverageSimilarity >= 0.90:
		recommendation = "Moderate compression. May be suitable for applications tolerant to some quality loss."
	default:
		recommendation = "Low compression quality. Consider adjusting quantization parameters."
	}

	const mb = 1024 * 1024
	return QualityReport{
		QualityMetrics:         metrics,
		QualityGrade:           grade,
		Recommendation:         recommendation,
		MemoryUsageMB:          float64(index.MemoryUsageBytes()) / mb,
		OriginalSizeEstimateMB: float64(index.Len()) * float64(index.Dim()) * 4 / mb,
	}, nil
}

// String renders the report for terminals.
func (r QualityReport) String() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "Compression Quality Report\n")
	p.Fprintf(&b, "  grade:            %s\n", r.QualityGrade)
	p.Fprintf(&b, "  avg similarity:   %.4f (min %.4f, max %.4f)\n", r.AverageSimilarity, r.MinSimilarity, r.MaxSimilarity)
	p.Fprintf(&b, "  compression:      %.2fx (%.1f%% savings)\n", r.CompressionRatio, r.MemorySavingsPercent)
	p.Fprintf(&b, "  memory:           %.2f MB (from %.2f MB)\n", r.MemoryUsageMB, r.OriginalSizeEstimateMB)
	p.Fprintf(&b, "  samples:          %d\n", r.SamplesAnalyzed)
	p.Fprintf(&b, "  recommendation:   %s\n", r.Recommendation)
	return b.String()
}

// RankingOverlap reports how much of the exact index's top-k set the
// quantized index recovers, per query, aggregated over a query set.
type RankingOverlap struct {
	// MeanRecall and MinRecall are in [0, 1]; 1 means every exact top-k
	// member was also in the quantized top-k (order ignored).
	MeanRecall float64
	MinRecall  float64
	Queries    int
	K          int
}

// CompareRankings measures the top-k set overlap (recall) between two
// indices over the same queries, typically an exact FlatIndex against a
// QuantizedIndex built from the same dataset.
//
// Returns ErrInvalidArgument (wrapped) for topK <= 0 or an empty query set;
// per-query search errors propagate.
func CompareRankings(exact, quantized VectorIndex, queries [][]float32, topK int) (RankingOverlap, error) {
	if topK <= 0 {
		return RankingOverlap{}, fmt.Errorf("topK must be positive, got %d: %w", topK, ErrInvalidArgument)
	}
	if len(queries) == 0 {
		return RankingOverlap{}, fmt.Errorf("no queries: %w", ErrInvalidArgument)
	}

	recalls := make([]float64, len(queries))
	for qi, query := range queries {
		exactRes, err := exact.SearchVector(query, topK)
		if err != nil {
			return RankingOverlap{}, fmt.Errorf("exact query %d: %w", qi, err)
		}
		quantRes, err := quantized.SearchVector(query, topK)
		if err != nil {
			return RankingOverlap{}, fmt.Errorf("quantized query %d: %w", qi, err)
		}

		exactSet := roaring.New()
		for _, r := range exactRes {
			exactSet.Add(uint32(r.Index))
		}
		quantSet := roaring.New()
		for _, r := range quantRes {
			quantSet.Add(uint32(r.Index))
		}
		recalls[qi] = float64(roaring.And(exactSet, quantSet).GetCardinality()) / float64(len(exactRes))
	}

	return RankingOverlap{
		MeanRecall: stat.Mean(recalls, nil),
		MinRecall:  floats.Min(recalls),
		Queries:    len(queries),
		K:          topK,
	}, nil
}
