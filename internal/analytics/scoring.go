package analytics

import (
	"math"
	"time"
)

// Intent score weights. Each component is capped on its own before the
// components are summed; the total itself is not clamped.
const (
	arTimeDivisor     = 10.0
	arTimeCap         = 40.0
	arSessionWeight   = 6.0
	arSessionCap      = 30.0
	uniqueDayWeight   = 6.0
	uniqueDayCap      = 12.0
	qrEngagedBonus    = 5.0
	qrOnlyBonus       = 2.0
	ctaClickWeight    = 35.0
	ctaClickCap       = 35.0
	recencyMax        = 5.0
	recencyWindowDays = 30.0
)

// ScoreBreakdown holds the capped value of each score component.
type ScoreBreakdown struct {
	ARTime     float64 `json:"ar_time"`
	ARSessions float64 `json:"ar_sessions"`
	UniqueDays float64 `json:"unique_days"`
	QRHandoff  float64 `json:"qr_handoff"`
	CTAClicks  float64 `json:"cta_clicks"`
	Recency    float64 `json:"recency"`
	Total      int     `json:"total"`
}

// Sum returns the unrounded total of the components.
func (b ScoreBreakdown) Sum() float64 {
	return b.ARTime + b.ARSessions + b.UniqueDays + b.QRHandoff + b.CTAClicks + b.Recency
}

// ScoreVisitor computes the intent score of a visitor relative to now.
// CTA clicks outweigh everything else because the call-to-action is only
// shown after a completed AR session.
func ScoreVisitor(v Visitor, now time.Time) ScoreBreakdown {
	b := ScoreBreakdown{
		ARTime:     capped(math.Max(0, v.TotalARSeconds)/arTimeDivisor, arTimeCap),
		ARSessions: capped(float64(v.ARSessionCount)*arSessionWeight, arSessionCap),
		UniqueDays: capped(float64(v.UniqueDayCount)*uniqueDayWeight, uniqueDayCap),
		QRHandoff:  qrBonus(v.HadQRHandoff, v.TotalARSeconds),
		CTAClicks:  capped(float64(v.CTAClickCount)*ctaClickWeight, ctaClickCap),
		Recency:    recency(v.LastSeen, now),
	}
	b.Total = int(math.Round(b.Sum()))
	return b
}

// IntentScore is ScoreVisitor reduced to the rounded total.
func IntentScore(v Visitor, now time.Time) int {
	return ScoreVisitor(v, now).Total
}

func capped(value, limit float64) float64 {
	if value < 0 {
		return 0
	}
	return math.Min(value, limit)
}

// qrBonus keeps pure QR scans small so they never outrank real engagement.
func qrBonus(handoff bool, arSeconds float64) float64 {
	switch {
	case handoff && arSeconds > 0:
		return qrEngagedBonus
	case handoff:
		return qrOnlyBonus
	default:
		return 0
	}
}

// recency decays linearly from recencyMax to zero over recencyWindowDays.
func recency(lastSeen, now time.Time) float64 {
	if lastSeen.IsZero() {
		return 0
	}
	days := now.Sub(lastSeen).Hours() / 24
	return capped(recencyMax*math.Max(0, 1-days/recencyWindowDays), recencyMax)
}
