package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"arpulse/internal/activity"
	"arpulse/internal/analytics"
	"arpulse/internal/database"
	"arpulse/internal/metrics"
	"arpulse/internal/timeframe"
)

// batchOptions are the window and clock flags shared by report and export.
type batchOptions struct {
	From string
	To   string
	Tz   string
	Now  string
}

func addBatchFlags(cmd *cobra.Command, opts *batchOptions) {
	cmd.Flags().StringVar(&opts.From, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Tz, "tz", "", "timezone for --from, --to and --now (default from config)")
	cmd.Flags().StringVar(&opts.Now, "now", "", "reference time for recency, RFC 3339 or YYYY-MM-DD (default: current time)")
}

// batch is one analyzed log file.
type batch struct {
	Source  string
	Window  *timeframe.Window
	Dropped int
	Result  *analytics.Result
	Took    time.Duration
}

// readRecords decodes a log file. "-" reads stdin.
func readRecords(path string, stdin io.Reader) ([]activity.Record, error) {
	if path == "-" {
		return activity.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return activity.Decode(f)
}

// analyzeFile loads, windows and analyzes one log file.
func analyzeFile(path string, stdin io.Reader, opts batchOptions, tp timeframe.TimeProvider, log *slog.Logger) (*batch, error) {
	records, err := readRecords(path, stdin)
	if err != nil {
		return nil, err
	}

	parser := timeframe.NewWindowParser(tp)
	window, err := parser.ParseWindow(timeframe.WindowParserParams{
		FromDate: opts.From,
		ToDate:   opts.To,
		Tz:       opts.Tz,
	})
	if err != nil {
		return nil, err
	}
	now, err := parser.ResolveNow(opts.Now, opts.Tz)
	if err != nil {
		return nil, err
	}

	kept, dropped := window.Filter(records)

	start := time.Now()
	res, err := analytics.Analyze(kept, analytics.Options{Now: now})
	if err != nil {
		return nil, err
	}
	took := time.Since(start)

	log.Info("Analyzed activity log",
		slog.String("source", path),
		slog.String("window", window.String()),
		slog.Int("records", len(records)),
		slog.Int("outside_window", dropped),
		slog.Int("excluded", len(res.Excluded)),
		slog.Int("visitors", len(res.Visitors)),
		slog.Duration("took", took))
	for _, ex := range res.Excluded {
		log.Debug("Excluded record", slog.Int("index", ex.Index), slog.String("reason", ex.Reason))
	}

	return &batch{Source: path, Window: window, Dropped: dropped, Result: res, Took: took}, nil
}

// writeMetrics records the batch and writes the textfile. An empty path
// disables metrics.
func writeMetrics(path string, b *batch) error {
	if path == "" {
		return nil
	}
	rec := metrics.NewRecorder()
	rec.ObserveWindow(b.Dropped)
	rec.Observe(b.Result, time.Now(), b.Took)
	return rec.WriteTextfile(path)
}

// openArchive opens and migrates the report archive.
func openArchive() (*database.DBManager, error) {
	dm := database.NewDBManager(cfg, logger)
	if err := dm.Init(); err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := dm.MigrateDatabase(); err != nil {
		_ = dm.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return dm, nil
}

// timezone returns the flag value or the configured default.
func timezone(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Timezone
}
