package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"arpulse/internal/analytics"
	"arpulse/internal/testsupport"
)

func TestScoreVisitor(t *testing.T) {
	now := testsupport.ReferenceNow

	tests := []struct {
		name    string
		visitor analytics.Visitor
		want    analytics.ScoreBreakdown
	}{
		{
			name:    "No activity and stale last seen scores zero",
			visitor: analytics.Visitor{LastSeen: now.AddDate(0, -3, 0)},
			want:    analytics.ScoreBreakdown{},
		},
		{
			name:    "Zero last seen has no recency",
			visitor: analytics.Visitor{},
			want:    analytics.ScoreBreakdown{},
		},
		{
			name: "Every component at its cap",
			visitor: analytics.Visitor{
				TotalARSeconds: 10_000,
				ARSessionCount: 40,
				UniqueDayCount: 9,
				HadQRHandoff:   true,
				CTAClickCount:  7,
				LastSeen:       now,
			},
			want: analytics.ScoreBreakdown{
				ARTime: 40, ARSessions: 30, UniqueDays: 12, QRHandoff: 5, CTAClicks: 35, Recency: 5, Total: 127,
			},
		},
		{
			name: "QR hand-off without AR time earns the small bonus",
			visitor: analytics.Visitor{
				HadQRHandoff:   true,
				UniqueDayCount: 1,
				LastSeen:       now.AddDate(0, 0, -15),
			},
			want: analytics.ScoreBreakdown{UniqueDays: 6, QRHandoff: 2, Recency: 2.5, Total: 11},
		},
		{
			name: "Future last seen caps recency",
			visitor: analytics.Visitor{
				UniqueDayCount: 1,
				LastSeen:       now.Add(48 * time.Hour),
			},
			want: analytics.ScoreBreakdown{UniqueDays: 6, Recency: 5, Total: 11},
		},
		{
			name: "Fractional components round once at the end",
			visitor: analytics.Visitor{
				TotalARSeconds: 12.4,
				ARSessionCount: 1,
				UniqueDayCount: 1,
				LastSeen:       now.AddDate(0, 0, -29),
			},
			want: analytics.ScoreBreakdown{ARTime: 1.24, ARSessions: 6, UniqueDays: 6, Recency: 5.0 / 30, Total: 13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.ScoreVisitor(tt.visitor, now)
			assert.InDelta(t, tt.want.ARTime, got.ARTime, 1e-9)
			assert.InDelta(t, tt.want.ARSessions, got.ARSessions, 1e-9)
			assert.InDelta(t, tt.want.UniqueDays, got.UniqueDays, 1e-9)
			assert.InDelta(t, tt.want.QRHandoff, got.QRHandoff, 1e-9)
			assert.InDelta(t, tt.want.CTAClicks, got.CTAClicks, 1e-9)
			assert.InDelta(t, tt.want.Recency, got.Recency, 1e-9)
			assert.Equal(t, tt.want.Total, got.Total)
			assert.Equal(t, got.Total, analytics.IntentScore(tt.visitor, now))
		})
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	now := testsupport.ReferenceNow
	base := analytics.Visitor{
		TotalARSeconds: 60,
		ARSessionCount: 1,
		UniqueDayCount: 1,
		LastSeen:       now.AddDate(0, 0, -10),
	}
	baseScore := analytics.IntentScore(base, now)

	bumps := map[string]func(v *analytics.Visitor){
		"more AR time":      func(v *analytics.Visitor) { v.TotalARSeconds += 100 },
		"more AR sessions":  func(v *analytics.Visitor) { v.ARSessionCount++ },
		"more unique days":  func(v *analytics.Visitor) { v.UniqueDayCount++ },
		"QR hand-off":       func(v *analytics.Visitor) { v.HadQRHandoff = true },
		"a CTA click":       func(v *analytics.Visitor) { v.CTAClickCount++ },
		"more recent visit": func(v *analytics.Visitor) { v.LastSeen = now },
	}
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			v := base
			bump(&v)
			assert.Greater(t, analytics.IntentScore(v, now), baseScore)
		})
	}
}

func TestCTAOutweighsBrowsing(t *testing.T) {
	now := testsupport.ReferenceNow
	browser := analytics.Visitor{
		TotalARSeconds: 200,
		ARSessionCount: 2,
		UniqueDayCount: 1,
		LastSeen:       now,
	}
	clicker := analytics.Visitor{
		TotalARSeconds: 20,
		ARSessionCount: 1,
		UniqueDayCount: 1,
		CTAClickCount:  1,
		LastSeen:       now,
	}
	assert.Greater(t, analytics.IntentScore(clicker, now), analytics.IntentScore(browser, now))
}
