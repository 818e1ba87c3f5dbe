// Command vectro is the CLI for the vectro embedding compression and
// similarity search engine.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:     "vectro",
	Short:   "Vectro - embedding compression and similarity search",
	Long:    `Vectro compresses float32 embeddings with scalar quantization and serves approximate nearest-neighbor queries by cosine similarity.`,
	Version: vectro.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig returns the config file's settings, or defaults when no
// --config flag was given.
func loadConfig() (vectro.Config, error) {
	if cfgPath == "" {
		return vectro.DefaultConfig(), nil
	}
	return vectro.LoadConfig(cfgPath)
}
