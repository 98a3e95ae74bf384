// Package activity holds the raw interaction-log records exported by the
// booking/configurator backend, plus decoding and validation of those records.
package activity

import (
	"errors"
	"math"
	"strings"
	"time"
)

// EngagementState is the AR viewer state reported with an attempt.
type EngagementState string

const (
	StateActive    EngagementState = "active"
	StateCompleted EngagementState = "completed"
	StateRecovered EngagementState = "recovered"
	StateOther     EngagementState = "other"
)

// ParseEngagementState normalizes a reported state. Blank input means the
// state was not reported; unknown values collapse to StateOther.
func ParseEngagementState(s string) EngagementState {
	switch EngagementState(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ""
	case StateActive:
		return StateActive
	case StateCompleted:
		return StateCompleted
	case StateRecovered:
		return StateRecovered
	default:
		return StateOther
	}
}

// Engaged reports whether the state counts as real AR engagement when the
// attempt succeeded.
func (s EngagementState) Engaged() bool {
	return s == StateActive || s == StateCompleted || s == StateRecovered
}

// Record is one interaction event: a page view, AR attempt, QR scan or CTA click.
type Record struct {
	VisitorHint     string            `json:"visitor_hint,omitempty"`
	Attributes      map[string]string `json:"auxiliary_attributes,omitempty"`
	SessionToken    string            `json:"session_token"`
	Timestamp       time.Time         `json:"timestamp"`
	ARSeconds       float64           `json:"ar_engagement_seconds,omitempty"`
	Succeeded       bool              `json:"succeeded"`
	EngagementState EngagementState   `json:"ar_engagement_state,omitempty"`
	QRScanned       bool              `json:"qr_was_scanned,omitempty"`
	CTAClicked      bool              `json:"cta_clicked,omitempty"`
	CTATimestamp    *time.Time        `json:"cta_timestamp,omitempty"`
	CTATargetURL    string            `json:"cta_target_url,omitempty"`
	CTALabel        string            `json:"cta_label,omitempty"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
}

var (
	ErrMissingTimestamp    = errors.New("missing timestamp")
	ErrMissingSessionToken = errors.New("missing session token")
)

// Validate checks the required fields. A record that fails validation is
// excluded from aggregation; it never aborts a batch.
func (r Record) Validate() error {
	if r.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if strings.TrimSpace(r.SessionToken) == "" {
		return ErrMissingSessionToken
	}
	return nil
}

// EngagementSeconds returns the AR duration, treating negative or
// non-finite values as absent.
func (r Record) EngagementSeconds() float64 {
	if r.ARSeconds <= 0 || math.IsNaN(r.ARSeconds) || math.IsInf(r.ARSeconds, 0) {
		return 0
	}
	return r.ARSeconds
}

// Exclusion describes a record dropped from a batch.
type Exclusion struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Partition splits records into those usable for aggregation and the
// exclusions for the rest. Input order is preserved.
func Partition(records []Record) ([]Record, []Exclusion) {
	included := make([]Record, 0, len(records))
	var excluded []Exclusion
	for i, r := range records {
		if err := r.Validate(); err != nil {
			excluded = append(excluded, Exclusion{Index: i, Reason: err.Error()})
			continue
		}
		included = append(included, r)
	}
	return included, excluded
}
