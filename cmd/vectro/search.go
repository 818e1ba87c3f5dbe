package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
)

var (
	searchTopK      int
	searchDataset   string
	searchQuantized bool
	searchCodec     string
)

// defaultDatasetPath is tried when --dataset is not given.
const defaultDatasetPath = "dataset.bin"

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search a dataset file for the nearest embeddings",
	Long: `Search parses a comma-separated query vector (for example "0.1,0.9,0.2"),
builds an index over a dataset file, and prints the nearest embeddings.

The dataset comes from --dataset, falling back to ./dataset.bin, falling back
to a tiny built-in demo dataset.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseQueryVector(args[0])
		if err != nil {
			return err
		}

		dataset, source, err := resolveDataset(searchDataset)
		if err != nil {
			return err
		}

		var index vectro.VectorIndex
		if searchQuantized {
			index, err = vectro.NewQuantizedIndex(dataset, vectro.CodecKind(searchCodec))
		} else {
			index, err = vectro.NewFlatIndex(dataset)
		}
		if err != nil {
			return err
		}

		results, err := index.Search().WithQuery(query).WithK(searchTopK).Execute()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "searching %d embeddings from %s\n", index.Len(), source)
		for i, res := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s -> %.4f\n", i+1, res.ID, res.Similarity)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchTopK, "top-k", vectro.DefaultTopK, "number of results")
	searchCmd.Flags().StringVar(&searchDataset, "dataset", "", "dataset file to search")
	searchCmd.Flags().BoolVar(&searchQuantized, "quantized", false, "search a quantized index")
	searchCmd.Flags().StringVar(&searchCodec, "codec", string(vectro.SQ8), "quantization codec for --quantized")
	rootCmd.AddCommand(searchCmd)
}

// parseQueryVector parses "0.1,0.9,0.2" into a float32 slice.
func parseQueryVector(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	vec := make([]float32, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid query component %q: %w", field, err)
		}
		vec = append(vec, float32(v))
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	return vec, nil
}

// resolveDataset loads the explicit path, then ./dataset.bin, then the
// built-in toy dataset.
func resolveDataset(path string) (*vectro.Dataset, string, error) {
	if path != "" {
		ds, err := vectro.LoadDataset(path)
		if err != nil {
			return nil, "", err
		}
		return ds, path, nil
	}
	if _, err := os.Stat(defaultDatasetPath); err == nil {
		ds, err := vectro.LoadDataset(defaultDatasetPath)
		if err != nil {
			return nil, "", err
		}
		return ds, defaultDatasetPath, nil
	}
	return toyDataset(), "built-in demo data", nil
}

// toyDataset is the fallback used when no dataset file exists; large enough
// to demonstrate ranking, small enough to read at a glance.
func toyDataset() *vectro.Dataset {
	ds := vectro.NewDataset()
	_ = ds.Add("one", []float32{1, 0})
	_ = ds.Add("two", []float32{0, 1})
	_ = ds.Add("three", []float32{0.707, 0.707})
	return ds
}
