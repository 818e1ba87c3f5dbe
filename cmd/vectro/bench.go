package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	benchDataset string
	benchCount   int
	benchDim     int
	benchTopK    int
	benchRuns    int
	benchSeed    uint64
	benchHistory string
)

// benchQueryCount caps how many dataset vectors are reused as queries.
const benchQueryCount = 32

// benchHistoryEntry is the medians file written after each run, used to
// print deltas against the previous run.
type benchHistoryEntry struct {
	FlatMedianMs      float64 `json:"flat_median_ms"`
	QuantizedMedianMs float64 `json:"quantized_median_ms"`
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark search performance on flat and quantized indices",
	Long: `Bench drives repeated query batches against an exact index and an sq8
quantized index built over the same data, then prints latency and throughput
for both. The dataset comes from --dataset or is generated (--count/--dim,
seeded). Medians are compared against the previous run recorded in the
history file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var dataset *vectro.Dataset
		var err error
		if benchDataset != "" {
			dataset, err = vectro.LoadDataset(benchDataset)
		} else {
			dataset, err = vectro.GenerateRandomEmbeddings(benchCount, benchDim, benchSeed)
		}
		if err != nil {
			return err
		}

		queryCount := benchQueryCount
		if queryCount > dataset.Len() {
			queryCount = dataset.Len()
		}
		queries := dataset.Vectors()[:queryCount]

		flat, err := vectro.NewFlatIndex(dataset)
		if err != nil {
			return err
		}
		quantized, err := vectro.NewQuantizedIndex(dataset, vectro.SQ8)
		if err != nil {
			return err
		}

		flatRes, err := vectro.BenchmarkSearchPerformance(flat, queries, benchTopK, benchRuns)
		if err != nil {
			return err
		}
		quantRes, err := vectro.BenchmarkSearchPerformance(quantized, queries, benchTopK, benchRuns)
		if err != nil {
			return err
		}

		prev, hasPrev := readBenchHistory(benchHistory)

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "benchmark: %d vectors, %d dims, %d queries x %d runs, top-k %d\n\n",
			dataset.Len(), dataset.Dim(), len(queries), benchRuns, benchTopK)
		printBenchRow(p, cmd, "flat", flatRes, prev.FlatMedianMs, hasPrev)
		printBenchRow(p, cmd, "quantized(sq8)", quantRes, prev.QuantizedMedianMs, hasPrev)
		p.Fprintf(cmd.OutOrStdout(), "\ncompression: %.2fx, %d bytes quantized\n",
			quantized.CompressionRatio(), quantized.MemoryUsageBytes())

		return writeBenchHistory(benchHistory, benchHistoryEntry{
			FlatMedianMs:      flatRes.MedianLatencyMs,
			QuantizedMedianMs: quantRes.MedianLatencyMs,
		})
	},
}

func printBenchRow(p *message.Printer, cmd *cobra.Command, name string, res vectro.BenchmarkResult, prevMedian float64, hasPrev bool) {
	p.Fprintf(cmd.OutOrStdout(), "%-16s median %.3f ms  mean %.3f ms  p95 %.3f ms  %.0f qps  %d/%d ok",
		name, res.MedianLatencyMs, res.AverageLatencyMs, res.P95LatencyMs,
		res.QueriesPerSecond, res.SuccessfulQueries, res.TotalRuns)
	if hasPrev && prevMedian > 0 {
		delta := (res.MedianLatencyMs - prevMedian) / prevMedian * 100
		p.Fprintf(cmd.OutOrStdout(), "  (median %+.2f%% vs last run)", delta)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}

func readBenchHistory(path string) (benchHistoryEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return benchHistoryEntry{}, false
	}
	var entry benchHistoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return benchHistoryEntry{}, false
	}
	return entry, true
}

func writeBenchHistory(path string, entry benchHistoryEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write benchmark history: %w", err)
	}
	return nil
}

func init() {
	benchCmd.Flags().StringVar(&benchDataset, "dataset", "", "dataset file to benchmark")
	benchCmd.Flags().IntVar(&benchCount, "count", 1000, "generated dataset size when no --dataset")
	benchCmd.Flags().IntVar(&benchDim, "dim", 128, "generated vector dimensionality")
	benchCmd.Flags().IntVar(&benchTopK, "top-k", vectro.DefaultTopK, "results per query")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 5, "full passes over the query set")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 42, "generator seed")
	benchCmd.Flags().StringVar(&benchHistory, "history", ".bench_history.json", "benchmark history file")
	rootCmd.AddCommand(benchCmd)
}
