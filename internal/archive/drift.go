package archive

import (
	"fmt"

	"gorm.io/gorm"
)

// DriftKind describes how a visitor's tier moved between two runs.
type DriftKind string

const (
	DriftPromoted DriftKind = "promoted"
	DriftDemoted  DriftKind = "demoted"
	DriftNew      DriftKind = "new"
	DriftDropped  DriftKind = "dropped"
)

// Drift is one visitor whose tier differs between two runs. Missing sides
// have an empty tier and a zero score.
type Drift struct {
	VisitorKey    string    `json:"visitor_key"`
	Label         string    `json:"label"`
	Kind          DriftKind `json:"kind"`
	PreviousTier  string    `json:"previous_tier"`
	CurrentTier   string    `json:"current_tier"`
	PreviousScore int       `json:"previous_score"`
	CurrentScore  int       `json:"current_score"`
}

var tierRank = map[string]int{
	"Low":    1,
	"Medium": 2,
	"High":   3,
}

// TierDrift loads two runs and compares their snapshots.
func TierDrift(db *gorm.DB, prevRunID, runID string) ([]Drift, error) {
	prev, err := RunVisitors(db, prevRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", prevRunID, err)
	}
	cur, err := RunVisitors(db, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return CompareSnapshots(prev, cur), nil
}

// CompareSnapshots lists the visitors whose tier changed, appeared or
// disappeared. Entries follow the current run's order, then dropped
// visitors in the previous run's order. A visitor whose score moved but whose
// tier did not is not reported.
func CompareSnapshots(prev, cur []VisitorSnapshot) []Drift {
	before := make(map[string]VisitorSnapshot, len(prev))
	for _, s := range prev {
		before[s.VisitorKey] = s
	}

	var drifts []Drift
	seen := make(map[string]bool, len(cur))
	for _, s := range cur {
		seen[s.VisitorKey] = true
		p, ok := before[s.VisitorKey]
		if !ok {
			drifts = append(drifts, Drift{
				VisitorKey:   s.VisitorKey,
				Label:        s.Label,
				Kind:         DriftNew,
				CurrentTier:  s.Tier,
				CurrentScore: s.Score,
			})
			continue
		}

		diff := tierRank[s.Tier] - tierRank[p.Tier]
		if diff == 0 {
			continue
		}
		kind := DriftPromoted
		if diff < 0 {
			kind = DriftDemoted
		}
		drifts = append(drifts, Drift{
			VisitorKey:    s.VisitorKey,
			Label:         s.Label,
			Kind:          kind,
			PreviousTier:  p.Tier,
			CurrentTier:   s.Tier,
			PreviousScore: p.Score,
			CurrentScore:  s.Score,
		})
	}

	for _, p := range prev {
		if seen[p.VisitorKey] {
			continue
		}
		drifts = append(drifts, Drift{
			VisitorKey:    p.VisitorKey,
			Label:         p.Label,
			Kind:          DriftDropped,
			PreviousTier:  p.Tier,
			PreviousScore: p.Score,
		})
	}

	return drifts
}
