package vectro

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// IngestStats reports what a streaming ingest did with its input.
type IngestStats struct {
	// Lines is the total number of lines scanned, blank lines included.
	Lines int

	// Added is the number of embeddings appended to the dataset.
	Added int

	// Skipped counts unparseable or dimension-mismatched lines. Blank lines
	// are ignored, not skipped.
	Skipped int
}

// maxIngestLine bounds a single input line; 64-dim vectors take well under
// 2 KiB, high-dimensional JSON records can run to megabytes.
const maxIngestLine = 16 * 1024 * 1024

// ingestBatchLines is how many lines are buffered before a parallel parse
// pass. Memory stays bounded by the batch, not the input size.
const ingestBatchLines = 4096

// ReadEmbeddings builds a dataset from a stream of line-delimited records.
//
// Two record shapes are auto-detected per line, JSON first:
//
//	{"id": "emb_1", "vector": [0.1, 0.2, 0.3]}
//	emb_1,0.1,0.2,0.3
//
// Blank lines are ignored. Unparseable lines, and lines whose vector length
// disagrees with the first accepted record, are skipped and counted rather
// than failing the stream. The input is consumed in bounded batches, each
// parsed across a worker pool; resident memory scales with the batch size,
// not the input size. The dataset's insertion order always equals input
// line order regardless of worker scheduling.
//
// The context cancels the parse phase; a canceled ingest returns the
// context's error and no dataset.
func ReadEmbeddings(ctx context.Context, r io.Reader) (*Dataset, IngestStats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxIngestLine)

	dataset := NewDataset()
	var stats IngestStats
	batch := make([]string, 0, ingestBatchLines)

	for scanner.Scan() {
		stats.Lines++
		batch = append(batch, scanner.Text())
		if len(batch) == ingestBatchLines {
			if err := ingestBatch(ctx, dataset, &stats, batch); err != nil {
				return nil, IngestStats{}, err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, IngestStats{}, fmt.Errorf("failed to scan input: %w", err)
	}
	if err := ingestBatch(ctx, dataset, &stats, batch); err != nil {
		return nil, IngestStats{}, err
	}
	return dataset, stats, nil
}

// ingestBatch parses one batch of lines in parallel into position-indexed
// slots, then appends the results sequentially so insertion order matches
// line order.
func ingestBatch(ctx context.Context, dataset *Dataset, stats *IngestStats, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	parsed := make([]*Embedding, len(lines))
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(lines) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(lines); start += chunk {
		end := start + chunk
		if end > len(lines) {
			end = len(lines)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				parsed[i] = parseEmbeddingLine(lines[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("ingest canceled: %w", err)
	}

	for i, e := range parsed {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if e == nil {
			stats.Skipped++
			continue
		}
		if err := dataset.AddEmbedding(*e); err != nil {
			stats.Skipped++
			continue
		}
		stats.Added++
	}
	return nil
}

// parseEmbeddingLine parses one non-blank line as JSON, falling back to CSV.
// Returns nil for blank or unparseable lines.
func parseEmbeddingLine(line string) *Embedding {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "{") {
		var e Embedding
		if err := json.Unmarshal([]byte(line), &e); err == nil && len(e.Vector) > 0 {
			return &e
		}
		return nil
	}

	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return nil
	}
	e := &Embedding{
		ID:     strings.TrimSpace(fields[0]),
		Vector: make([]float32, 0, len(fields)-1),
	}
	for _, field := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil
		}
		e.Vector = append(e.Vector, float32(v))
	}
	return e
}
