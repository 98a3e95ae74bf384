package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"arpulse/internal/analytics"
	"arpulse/internal/report"
	"arpulse/internal/timeframe"
)

type exportOptions struct {
	batchOptions
	Out       string
	Formats   []string
	Anonymize bool
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export <logs.json>",
	Short: "Write visitor and activity exports to a directory",
	Long: "Analyzes an activity log and writes visitors.<ext> (ranked by intent score) and " +
		"activity.<ext> (one row per included record) for every requested format.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := exportOpts
		opts.Tz = timezone(opts.Tz)
		if len(opts.Formats) == 0 {
			opts.Formats = []string{cfg.ExportFormat}
		}

		formats := make([]report.Format, 0, len(opts.Formats))
		for _, name := range opts.Formats {
			f, err := report.ParseFormat(name)
			if err != nil {
				return err
			}
			formats = append(formats, f)
		}

		b, err := analyzeFile(args[0], cmd.InOrStdin(), opts.batchOptions, &timeframe.DefaultTimeProvider{}, logger)
		if err != nil {
			return err
		}

		written, err := writeExports(cmd.Context(), opts.Out, formats, b.Result, report.Options{Anonymize: opts.Anonymize})
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

// writeExports writes the visitor and activity tables in every format
// concurrently and returns the written paths, visitors first per format.
func writeExports(ctx context.Context, dir string, formats []report.Format, res *analytics.Result, opts report.Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	formats = uniqueFormats(formats)
	ranked := analytics.Sort(res.Visitors, analytics.SortByIntentScore, true)
	tables := []report.Table{
		report.VisitorTable(report.VisitorRows(ranked, opts)),
		report.ActivityTable(report.ActivityRows(res, opts)),
	}

	paths := make([]string, len(formats)*len(tables))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		for j, t := range tables {
			idx := i*len(tables) + j
			path := filepath.Join(dir, t.Name+f.Extension())
			paths[idx] = path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return writeTable(path, f, t)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("Wrote exports", slog.String("dir", dir), slog.Int("files", len(paths)))
	return paths, nil
}

// uniqueFormats drops repeated formats, keeping first-seen order. Each
// format maps to one file per table.
func uniqueFormats(formats []report.Format) []report.Format {
	seen := make(map[report.Format]bool, len(formats))
	out := make([]report.Format, 0, len(formats))
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func writeTable(path string, f report.Format, t report.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.Encode(file, f, t); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func init() {
	exportCmd.Flags().StringVarP(&exportOpts.Out, "out", "o", ".", "output directory")
	exportCmd.Flags().StringSliceVarP(&exportOpts.Formats, "format", "f", nil, "formats to write, repeatable or comma separated (default from config)")
	exportCmd.Flags().BoolVar(&exportOpts.Anonymize, "anonymize", false, "replace labels and keys with pseudonyms and drop personal fields")
	addBatchFlags(exportCmd, &exportOpts.batchOptions)
	rootCmd.AddCommand(exportCmd)
}
