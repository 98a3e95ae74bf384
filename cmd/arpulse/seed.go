package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"arpulse/internal/seeder"
	"arpulse/internal/timeframe"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic activity log",
	Long:  "Writes deterministic synthetic configurator traffic in the backend's {\"logs\": [...]} format, for demos and load tests.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		visitors, _ := cmd.Flags().GetInt("visitors")
		seed, _ := cmd.Flags().GetUint64("seed")
		out, _ := cmd.Flags().GetString("out")
		nowFlag, _ := cmd.Flags().GetString("now")
		malformed, _ := cmd.Flags().GetFloat64("malformed")

		if visitors <= 0 {
			return fmt.Errorf("--visitors must be positive")
		}
		now, err := timeframe.NewWindowParser().ResolveNow(nowFlag, cfg.Timezone)
		if err != nil {
			return err
		}

		s := seeder.NewSeeder(logger, visitors, seed, now.UTC().Truncate(time.Second))
		s.MalformedRate = malformed

		w := cmd.OutOrStdout()
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}

		n, err := s.Write(cmd.Context(), w)
		if err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s\n", n, out)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("visitors", 200, "number of synthetic visitors")
	seedCmd.Flags().Uint64("seed", 1, "random seed; the same seed and --now give the same log")
	seedCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	seedCmd.Flags().String("now", "", "latest interaction time, RFC 3339 or YYYY-MM-DD (default: current time)")
	seedCmd.Flags().Float64("malformed", 0.01, "share of records written without a session token")
	rootCmd.AddCommand(seedCmd)
}
