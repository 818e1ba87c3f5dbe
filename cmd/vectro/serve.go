package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vectrodb/vectro"
)

var (
	serveAddr    string
	serveDataset string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	Long: `Serve starts the HTTP API. Settings come from --config, overridden by
flags; --dataset preloads a dataset file before listening. The server shuts
down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveDataset != "" {
			cfg.DatasetPath = serveDataset
		}

		srv := vectro.NewServer(cfg, slog.Default())
		if cfg.DatasetPath != "" {
			if err := srv.LoadDatasetFile(cfg.DatasetPath); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "dataset file to preload (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
