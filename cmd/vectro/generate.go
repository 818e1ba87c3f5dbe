package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
)

var (
	generateCount int
	generateDim   int
	generateTheme string
	generateSeed  uint64
	generateOut   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Emit a seeded sample dataset as JSON Lines",
	Long: `Generate writes deterministic sample embeddings, one JSON record per line,
suitable for feeding back into "vectro compress". Themes: products, movies,
documents, mixed, random.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataset, err := vectro.GenerateThemedEmbeddings(generateTheme, generateCount, generateDim, generateSeed)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if generateOut != "" {
			f, err := os.Create(generateOut)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		w := bufio.NewWriter(out)
		enc := json.NewEncoder(w)
		for i := 0; i < dataset.Len(); i++ {
			if err := enc.Encode(dataset.At(i)); err != nil {
				return err
			}
		}
		return w.Flush()
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateCount, "count", 1000, "number of embeddings")
	generateCmd.Flags().IntVar(&generateDim, "dim", 128, "vector dimensionality")
	generateCmd.Flags().StringVar(&generateTheme, "theme", "random", "dataset theme")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 42, "generator seed")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}
