package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"arpulse/internal/archive"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived report runs",
	Long:  "Commands for listing, viewing, and deleting runs stored with report --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dm, err := openArchive()
		if err != nil {
			return err
		}
		defer dm.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := archive.ListRuns(dm.GetConnection(), limit)
		if err != nil {
			return fmt.Errorf("runs list: %w", err)
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its ranked visitors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dm, err := openArchive()
		if err != nil {
			return err
		}
		defer dm.Close()

		db := dm.GetConnection()
		run, err := archive.GetRun(db, args[0])
		if err != nil {
			return fmt.Errorf("runs show: %w", err)
		}
		snapshots, err := archive.RunVisitors(db, run.ID)
		if err != nil {
			return fmt.Errorf("runs show: %w", err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Run      *archive.ReportRun        `json:"run"`
				Visitors []archive.VisitorSnapshot `json:"visitors"`
			}{run, snapshots})
		}

		formatRunDetail(cmd.OutOrStdout(), run, snapshots)
		return nil
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dm, err := openArchive()
		if err != nil {
			return err
		}
		defer dm.Close()

		db := dm.GetConnection()
		run, err := archive.GetRun(db, args[0])
		if err != nil {
			return fmt.Errorf("runs delete: %w", err)
		}
		if err := archive.DeleteRun(db, run.ID); err != nil {
			return fmt.Errorf("runs delete: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted run %s\n", run.ID)
		return nil
	},
}

// -- runs prune --

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if !cmd.Flags().Changed("days") {
			days = cfg.ArchiveRetentionDays
		}
		if days <= 0 {
			return fmt.Errorf("retention must be at least one day")
		}

		dm, err := openArchive()
		if err != nil {
			return err
		}
		defer dm.Close()

		cutoff := time.Now().AddDate(0, 0, -days)
		deleted, err := archive.PruneRuns(dm.GetConnection(), cutoff, logger)
		if err != nil {
			return fmt.Errorf("runs prune: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d runs older than %d days\n", deleted, days)
		return nil
	},
}

func init() {
	runsPruneCmd.Flags().Int("days", 0, "retention in days (default from config)")
	runsListCmd.Flags().Int("limit", 20, "max number of runs to display (0 = all)")
	runsShowCmd.Flags().Bool("json", false, "print the run as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to out.
func formatRunsList(out io.Writer, runs []archive.ReportRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tGENERATED\tVISITORS\tHIGH\tMEDIUM\tLOW\tEXCLUDED\tMODE\tSOURCE")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.GeneratedAt.Format("2006-01-02 15:04"),
			r.VisitorCount,
			r.HighCount,
			r.MediumCount,
			r.LowCount,
			r.ExcludedCount,
			r.Mode,
			r.Source,
		)
	}
	_ = w.Flush()
}

// formatRunDetail writes a run header followed by its visitors in rank order.
func formatRunDetail(out io.Writer, run *archive.ReportRun, snapshots []archive.VisitorSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", run.ID)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", run.Source)
	_, _ = fmt.Fprintf(w, "Generated:\t%s\n", run.GeneratedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Reference time:\t%s\n", run.ReferenceTime.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Records:\t%d included, %d excluded\n", run.RecordCount, run.ExcludedCount)
	_, _ = fmt.Fprintf(w, "Tiers:\t%d high, %d medium, %d low (%s)\n", run.HighCount, run.MediumCount, run.LowCount, run.Mode)
	_ = w.Flush()

	if len(snapshots) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tLABEL\tSCORE\tTIER\tAR SECONDS\tSESSIONS\tCTA\tLAST SEEN")
	for _, s := range snapshots {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%.1f\t%d\t%d\t%s\n",
			s.Position,
			s.Label,
			s.Score,
			s.Tier,
			s.ARSeconds,
			s.Sessions,
			s.CTAClicks,
			s.LastSeen.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
