package analytics

import (
	"math"
	"time"

	"arpulse/internal/visitors"
)

// Visitor is the derived summary of every record resolved to one identity.
// It is rebuilt on every analysis run and never mutated afterwards.
type Visitor struct {
	ID               string            `json:"id"`
	DisplayLabel     string            `json:"display_label"`
	IdentitySource   visitors.Source   `json:"identity_source"`
	TotalARSeconds   float64           `json:"total_ar_seconds"`
	SessionCount     int               `json:"session_count"`
	ARSessionCount   int               `json:"ar_session_count"`
	UniqueDayCount   int               `json:"unique_day_count"`
	HadQRHandoff     bool              `json:"had_qr_handoff"`
	CTAClickCount    int               `json:"cta_click_count"`
	ViewCount        int               `json:"view_count"`
	SuccessCount     int               `json:"success_count"`
	FirstSeen        time.Time         `json:"first_seen"`
	LastSeen         time.Time         `json:"last_seen"`
	MergedAttributes map[string]string `json:"merged_attributes,omitempty"`
	Sessions         []Session         `json:"sessions,omitempty"`
	IntentScore      int               `json:"intent_score"`
	IntentTier       Tier              `json:"intent_tier"`
	Breakdown        ScoreBreakdown    `json:"score_breakdown"`
}

// ARSuccessRate is the share of the visitor's records that succeeded, as a
// percentage in [0, 100].
func (v Visitor) ARSuccessRate() float64 {
	if v.ViewCount == 0 {
		return 0
	}
	return float64(v.SuccessCount) / float64(v.ViewCount) * 100
}

// SuccessRatePercent is ARSuccessRate rounded to a whole percentage.
func (v Visitor) SuccessRatePercent() int {
	return int(math.Round(v.ARSuccessRate()))
}

// AverageARSeconds is the mean AR time per AR session.
func (v Visitor) AverageARSeconds() float64 {
	if v.ARSessionCount == 0 {
		return 0
	}
	return v.TotalARSeconds / float64(v.ARSessionCount)
}
