package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"arpulse/internal/activity"
	"arpulse/internal/analytics"
	"arpulse/internal/testsupport"
)

func TestSummarize(t *testing.T) {
	t.Run("Totals across visitors", func(t *testing.T) {
		res := analyze(t, []activity.Record{
			testsupport.NewRecord("s1", testsupport.DaysAgo(1), testsupport.WithHint("a"), testsupport.WithARSeconds(40),
				testsupport.WithQRScan()),
			testsupport.NewRecord("s2", testsupport.DaysAgo(1), testsupport.WithHint("b"),
				testsupport.WithCTA("Book", "https://example.com")),
			testsupport.NewRecord("s3", testsupport.DaysAgo(1), testsupport.WithHint("b"), testsupport.WithARSeconds(10)),
			testsupport.NewRecord("", testsupport.DaysAgo(1)),
		})

		s := analytics.Summarize(res)
		assert.Equal(t, 2, s.Visitors)
		assert.Equal(t, 3, s.Records)
		assert.Equal(t, 1, s.Excluded)
		assert.InDelta(t, 50.0, s.TotalARSeconds, 1e-9)
		assert.Equal(t, 1, s.CTAClicks)
		assert.Equal(t, 1, s.QRHandoffs)
		assert.Equal(t, res.Classification.Mode, s.Mode)
		assert.InDelta(t, res.Classification.Mean, s.MeanScore, 1e-9)

		total := 0
		for _, n := range s.Tiers {
			total += n
		}
		assert.Equal(t, s.Visitors, total)
	})

	t.Run("Empty result still lists every tier", func(t *testing.T) {
		s := analytics.Summarize(analyze(t, nil))
		assert.Equal(t, 0, s.Visitors)
		assert.Equal(t, analytics.ModeNone, s.Mode)
		for _, tier := range analytics.Tiers {
			assert.Contains(t, s.Tiers, tier)
			assert.Equal(t, 0, s.Tiers[tier])
		}
	})

	t.Run("Nil result", func(t *testing.T) {
		s := analytics.Summarize(nil)
		assert.Len(t, s.Tiers, len(analytics.Tiers))
	})
}
