package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"arpulse/internal/config"
	"arpulse/internal/logging"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "arpulse",
	Short: "Buying-intent scoring for AR car configurator logs",
	Long: "Aggregates configurator interaction logs into per-visitor engagement profiles, " +
		"scores buying intent and tiers visitors into High, Medium and Low.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.GetConfig()
		logger, logCloser = logging.New(cfg)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
