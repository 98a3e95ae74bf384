package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"arpulse/internal/archive"
)

var driftCmd = &cobra.Command{
	Use:   "drift [prev-run] [run]",
	Short: "Show visitors whose intent tier changed between two runs",
	Long: "Compares two archived runs. With no arguments the latest run is compared with the " +
		"one before it; with one argument that run is compared with its predecessor.",
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dm, err := openArchive()
		if err != nil {
			return err
		}
		defer dm.Close()

		db := dm.GetConnection()
		prev, cur, err := resolveDriftRuns(db, args)
		if err != nil {
			return err
		}
		drifts, err := archive.TierDrift(db, prev.ID, cur.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Comparing %s -> %s\n", prev.ID, cur.ID)
		if len(drifts) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No tier changes.")
			return nil
		}
		formatDrift(cmd.OutOrStdout(), drifts)
		return nil
	},
}

// resolveDriftRuns picks the pair of runs to compare from zero, one or two
// run id arguments.
func resolveDriftRuns(db *gorm.DB, args []string) (*archive.ReportRun, *archive.ReportRun, error) {
	if len(args) == 2 {
		prev, err := archive.GetRun(db, args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: %w", args[0], err)
		}
		cur, err := archive.GetRun(db, args[1])
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: %w", args[1], err)
		}
		return prev, cur, nil
	}

	var cur *archive.ReportRun
	if len(args) == 1 {
		run, err := archive.GetRun(db, args[0])
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: %w", args[0], err)
		}
		cur = run
	} else {
		runs, err := archive.ListRuns(db, 1)
		if err != nil {
			return nil, nil, err
		}
		if len(runs) == 0 {
			return nil, nil, errors.New("no archived runs; use report --save first")
		}
		cur = &runs[0]
	}

	prev, err := archive.PreviousRun(db, cur)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", cur.ID, err)
	}
	return prev, cur, nil
}

// formatDrift writes tier changes as a table.
func formatDrift(out io.Writer, drifts []archive.Drift) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VISITOR\tCHANGE\tFROM\tTO\tSCORE")
	for _, d := range drifts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Label,
			d.Kind,
			orDash(d.PreviousTier),
			orDash(d.CurrentTier),
			scoreChange(d),
		)
	}
	_ = w.Flush()
}

func scoreChange(d archive.Drift) string {
	switch d.Kind {
	case archive.DriftNew:
		return fmt.Sprintf("%d", d.CurrentScore)
	case archive.DriftDropped:
		return fmt.Sprintf("%d", d.PreviousScore)
	default:
		return fmt.Sprintf("%d -> %d", d.PreviousScore, d.CurrentScore)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(driftCmd)
}
