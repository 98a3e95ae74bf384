package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"arpulse/internal/analytics"
	"arpulse/internal/archive"
	"arpulse/internal/report"
	"arpulse/internal/timeframe"
)

type reportOptions struct {
	batchOptions
	Format    string
	Sort      string
	Asc       bool
	Limit     int
	Anonymize bool
	Save      bool
	Metrics   string
}

var reportOpts reportOptions

var reportCmd = &cobra.Command{
	Use:   "report <logs.json>",
	Short: "Score and rank visitors from an activity log",
	Long: "Reads a configurator activity log (a JSON array or {\"logs\": [...]}; \"-\" for stdin), " +
		"prints visitors ranked by intent and a population summary on stderr.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := reportOpts
		opts.Tz = timezone(opts.Tz)

		format, err := resolveFormat(cmd, opts.Format, os.Stdout)
		if err != nil {
			return err
		}
		sortKey, err := analytics.ParseSortKey(opts.Sort)
		if err != nil {
			return err
		}

		b, err := analyzeFile(args[0], cmd.InOrStdin(), opts.batchOptions, &timeframe.DefaultTimeProvider{}, logger)
		if err != nil {
			return err
		}

		ranked := analytics.Sort(b.Result.Visitors, sortKey, !opts.Asc)
		if opts.Limit > 0 && len(ranked) > opts.Limit {
			ranked = ranked[:opts.Limit]
		}
		table := report.VisitorTable(report.VisitorRows(ranked, report.Options{Anonymize: opts.Anonymize}))
		if err := report.Encode(cmd.OutOrStdout(), format, table); err != nil {
			return err
		}

		if err := report.WriteSummary(cmd.ErrOrStderr(), analytics.Summarize(b.Result), b.Result.Classification); err != nil {
			return err
		}

		if opts.Save {
			if err := saveBatch(cmd.ErrOrStderr(), b); err != nil {
				return err
			}
		}
		return writeMetrics(opts.Metrics, b)
	},
}

// resolveFormat picks the output format: the flag when set, otherwise the
// configured default, with the terminal table replaced by CSV when stdout is
// not a terminal.
func resolveFormat(cmd *cobra.Command, flag string, stdout *os.File) (report.Format, error) {
	if cmd.Flags().Changed("format") {
		return report.ParseFormat(flag)
	}
	f, err := report.ParseFormat(cfg.ExportFormat)
	if err != nil {
		return "", err
	}
	if f == report.FormatTable && !term.IsTerminal(int(stdout.Fd())) {
		return report.FormatCSV, nil
	}
	return f, nil
}

func saveBatch(out io.Writer, b *batch) error {
	dm, err := openArchive()
	if err != nil {
		return err
	}
	defer dm.Close()

	run, err := archive.SaveRun(dm.GetConnection(), b.Result, b.Source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("Archived report run", slog.String("run_id", run.ID), slog.Int("visitors", run.VisitorCount))
	_, err = fmt.Fprintf(out, "Saved run %s\n", run.ID)
	return err
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOpts.Format, "format", "f", "", "output format: table, csv, json, yaml, xlsx (default from config)")
	f.StringVar(&reportOpts.Sort, "sort", "", "sort key: intent_score, total_ar_seconds, session_count, ar_success_rate, view_count, cta_clicks, last_seen, label (default from config)")
	f.BoolVar(&reportOpts.Asc, "asc", false, "sort ascending")
	f.IntVarP(&reportOpts.Limit, "limit", "n", 0, "show at most n visitors (0 = all)")
	f.BoolVar(&reportOpts.Anonymize, "anonymize", false, "replace labels and keys with pseudonyms and drop attributes")
	f.BoolVar(&reportOpts.Save, "save", false, "store the run in the report archive")
	f.StringVar(&reportOpts.Metrics, "metrics", "", "write a Prometheus textfile to this path (default from config)")
	addBatchFlags(reportCmd, &reportOpts.batchOptions)

	reportCmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("sort") {
			reportOpts.Sort = cfg.SortKey
		}
		if !cmd.Flags().Changed("asc") {
			reportOpts.Asc = !cfg.SortDesc
		}
		if !cmd.Flags().Changed("metrics") {
			reportOpts.Metrics = cfg.MetricsFile
		}
		return nil
	}

	rootCmd.AddCommand(reportCmd)
}
