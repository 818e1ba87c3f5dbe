package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	compressQuantize bool
	compressCodec    string
)

var compressCmd = &cobra.Command{
	Use:   "compress <input> <output>",
	Short: "Ingest JSONL/CSV embeddings and write a dataset file",
	Long: `Compress reads line-delimited embeddings (JSON records or id,v1,v2,... CSV
rows, auto-detected per line) from input and writes a vectro dataset file.
With --quantize the vectors are stored scalar-quantized, trading a bounded
reconstruction error for a roughly 4x (sq8) or 2x (sq16) smaller payload.

Use "-" as the input to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]

		var in io.Reader = os.Stdin
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()
			in = f
		}

		bar := progressbar.DefaultBytes(-1, "ingesting")
		dataset, ingestStats, err := vectro.ReadEmbeddings(cmd.Context(), io.TeeReader(in, bar))
		_ = bar.Finish()
		if err != nil {
			return err
		}
		if dataset.Len() == 0 {
			return fmt.Errorf("no embeddings ingested (%d lines skipped)", ingestStats.Skipped)
		}

		if compressQuantize {
			err = dataset.SaveQuantized(output, vectro.CodecKind(compressCodec))
		} else {
			err = dataset.Save(output)
		}
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Fprintf(cmd.OutOrStdout(), "wrote %d embeddings (%d dims) to %s",
			dataset.Len(), dataset.Dim(), output)
		if ingestStats.Skipped > 0 {
			p.Fprintf(cmd.OutOrStdout(), ", skipped %d lines", ingestStats.Skipped)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	compressCmd.Flags().BoolVar(&compressQuantize, "quantize", false, "store vectors scalar-quantized")
	compressCmd.Flags().StringVar(&compressCodec, "codec", string(vectro.SQ8), "quantization codec: sq8, sq16, or fp16")
	rootCmd.AddCommand(compressCmd)
}
