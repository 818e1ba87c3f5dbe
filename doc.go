/*
Package vectro provides an embedding compression and similarity search engine for Go.

Vectro ingests fixed-dimensionality float32 vectors tagged with string identifiers,
builds brute-force searchable indices over them, and answers nearest-neighbor
queries by cosine similarity. Its distinguishing feature is scalar quantization:
vectors can be compressed to 8-bit or 16-bit integer codes (roughly 4x and 2x
smaller than float32) with a bounded, quantifiable reconstruction error, and
searched in compressed form.

# Quick Start

Build a dataset, index it, and search:

	package main

	import (
	    "fmt"
	    "log"

	    "github.com/vectrodb/vectro"
	)

	func main() {
	    ds := vectro.NewDataset()
	    if err := ds.Add("doc_1", []float32{0.1, 0.9, 0.2}); err != nil {
	        log.Fatal(err)
	    }
	    if err := ds.Add("doc_2", []float32{0.8, 0.1, 0.3}); err != nil {
	        log.Fatal(err)
	    }

	    index, err := vectro.NewFlatIndex(ds)
	    if err != nil {
	        log.Fatal(err)
	    }

	    results, err := index.SearchVector([]float32{0.1, 0.8, 0.2}, 1)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(results[0].ID, results[0].Similarity)
	}

# Compressed Search

NewQuantizedIndex builds a compressed index with the same search contract as
FlatIndex. Similarity is computed against dequantized reconstructions of the
stored vectors; the query stays full precision:

	qidx, err := vectro.NewQuantizedIndex(ds, vectro.SQ8)
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(qidx.CompressionRatio()) // ~4.0 for sq8 on large dims

# Quality and Performance

AnalyzeCompressionQuality measures how faithfully a quantized index reproduces
the original vectors, GenerateQualityReport turns the numbers into a graded
report, CompareRankings measures top-k recall against the exact index, and
BenchmarkSearchPerformance measures search latency and throughput.

# Indices Are Snapshots

Building an index takes a snapshot of the dataset: vectors appended after the
build never appear in that index. Built indices are immutable and safe for
concurrent searches without locking.
*/
package vectro
