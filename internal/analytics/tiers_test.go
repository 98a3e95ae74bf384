package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/analytics"
)

func TestClassify(t *testing.T) {
	t.Run("Spread-out population uses score thresholds", func(t *testing.T) {
		scores := []int{0, 0, 0, 5, 5, 5, 50, 55, 90, 95}
		c := analytics.Classify(scores)

		assert.Equal(t, analytics.ModeScore, c.Mode)
		assert.InDelta(t, 30.5, c.Mean, 1e-9)
		assert.Greater(t, c.StdDev, 5.0)
		assert.Equal(t, 0, c.Q1)
		assert.Equal(t, 55, c.Q3)
		assert.InDelta(t, 55.0, c.HighThreshold, 1e-9)
		assert.InDelta(t, 0.0, c.LowThreshold, 1e-9)

		want := []analytics.Tier{
			analytics.TierLow, analytics.TierLow, analytics.TierLow,
			analytics.TierMedium, analytics.TierMedium, analytics.TierMedium,
			analytics.TierMedium, analytics.TierHigh, analytics.TierHigh, analytics.TierHigh,
		}
		assert.Equal(t, want, c.Tiers)
	})

	t.Run("Tight cluster falls back to percentiles", func(t *testing.T) {
		scores := []int{50, 48, 52, 49, 51}
		c := analytics.Classify(scores)

		assert.Equal(t, analytics.ModePercentile, c.Mode)
		assert.LessOrEqual(t, c.StdDev, 5.0)
		assert.LessOrEqual(t, c.Q3-c.Q1, 10)

		assert.Equal(t, []analytics.Tier{
			analytics.TierMedium, analytics.TierLow, analytics.TierHigh, analytics.TierLow, analytics.TierMedium,
		}, c.Tiers)
	})

	t.Run("Equal scores keep input order in percentile mode", func(t *testing.T) {
		c := analytics.Classify([]int{10, 10, 10, 10, 10})
		assert.Equal(t, analytics.ModePercentile, c.Mode)
		assert.Equal(t, []analytics.Tier{
			analytics.TierHigh, analytics.TierMedium, analytics.TierMedium, analytics.TierLow, analytics.TierLow,
		}, c.Tiers)
	})

	t.Run("Single visitor", func(t *testing.T) {
		c := analytics.Classify([]int{42})
		assert.Equal(t, analytics.ModePercentile, c.Mode)
		assert.Equal(t, []analytics.Tier{analytics.TierHigh}, c.Tiers)
	})

	t.Run("Empty population", func(t *testing.T) {
		c := analytics.Classify(nil)
		assert.Equal(t, analytics.ModeNone, c.Mode)
		assert.Empty(t, c.Tiers)
	})

	t.Run("Every visitor gets exactly one tier", func(t *testing.T) {
		populations := [][]int{
			{1, 2, 3},
			{0, 100},
			{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7},
			{0, 12, 25, 37, 50, 62, 75, 87, 100, 112, 127},
		}
		for _, scores := range populations {
			c := analytics.Classify(scores)
			require.Len(t, c.Tiers, len(scores))
			for _, tier := range c.Tiers {
				assert.Contains(t, analytics.Tiers, tier)
			}
		}
	})

	t.Run("Higher score never lands in a lower tier", func(t *testing.T) {
		rank := map[analytics.Tier]int{analytics.TierLow: 0, analytics.TierMedium: 1, analytics.TierHigh: 2}
		scores := []int{3, 80, 14, 0, 55, 21, 90, 8, 33, 47}
		c := analytics.Classify(scores)
		for i := range scores {
			for j := range scores {
				if scores[i] > scores[j] {
					assert.GreaterOrEqual(t, rank[c.Tiers[i]], rank[c.Tiers[j]])
				}
			}
		}
	})
}
