package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"arpulse/internal/analytics"
)

// WriteSummary prints population totals and the classifier outcome.
func WriteSummary(out io.Writer, s analytics.Summary, c analytics.Classification) error {
	caser := cases.Title(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Visitors:\t%d\n", s.Visitors)
	fmt.Fprintf(w, "Records:\t%d included, %d excluded\n", s.Records, s.Excluded)
	for _, tier := range analytics.Tiers {
		fmt.Fprintf(w, "  %s:\t%d\n", caser.String(string(tier)), s.Tiers[tier])
	}
	fmt.Fprintf(w, "AR time:\t%.1fs\n", s.TotalARSeconds)
	fmt.Fprintf(w, "CTA clicks:\t%d\n", s.CTAClicks)
	fmt.Fprintf(w, "QR hand-offs:\t%d\n", s.QRHandoffs)
	fmt.Fprintf(w, "Mean score:\t%.1f\n", s.MeanScore)
	fmt.Fprintf(w, "Tiering:\t%s\n", caser.String(string(s.Mode)))
	if c.Mode == analytics.ModeScore {
		fmt.Fprintf(w, "Thresholds:\thigh >= %.1f, medium > %.1f\n", c.HighThreshold, c.LowThreshold)
	}
	return w.Flush()
}
