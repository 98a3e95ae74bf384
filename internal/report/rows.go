// Package report flattens analysis results into export rows and encodes them
// as CSV, JSON, YAML, XLSX or an aligned terminal table.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"arpulse/internal/analytics"
	"arpulse/internal/visitors"
)

// Options controls how rows are built.
type Options struct {
	// Anonymize replaces labels and keys with deterministic pseudonyms and
	// drops attributes, hints and coordinates.
	Anonymize bool
}

// VisitorRow is one line of the visitor export.
type VisitorRow struct {
	Label        string    `json:"label" yaml:"label"`
	Key          string    `json:"key" yaml:"key"`
	Source       string    `json:"source" yaml:"source"`
	Score        int       `json:"score" yaml:"score"`
	Tier         string    `json:"tier" yaml:"tier"`
	ARSeconds    float64   `json:"ar_seconds" yaml:"ar_seconds"`
	Sessions     int       `json:"sessions" yaml:"sessions"`
	ARSessions   int       `json:"ar_sessions" yaml:"ar_sessions"`
	Views        int       `json:"views" yaml:"views"`
	SuccessRate  int       `json:"success_rate" yaml:"success_rate"`
	AvgARSeconds float64   `json:"avg_ar_seconds" yaml:"avg_ar_seconds"`
	UniqueDays   int       `json:"unique_days" yaml:"unique_days"`
	QRHandoff    bool      `json:"qr_handoff" yaml:"qr_handoff"`
	CTAClicks    int       `json:"cta_clicks" yaml:"cta_clicks"`
	FirstSeen    time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen     time.Time `json:"last_seen" yaml:"last_seen"`
	Attributes   string    `json:"attributes" yaml:"attributes"`
}

var visitorHeader = []string{
	"label", "key", "source", "score", "tier", "ar_seconds", "sessions", "ar_sessions", "views",
	"success_rate", "avg_ar_seconds", "unique_days", "qr_handoff", "cta_clicks", "first_seen",
	"last_seen", "attributes",
}

func (r VisitorRow) values() []any {
	return []any{
		r.Label, r.Key, r.Source, r.Score, r.Tier, r.ARSeconds, r.Sessions, r.ARSessions, r.Views,
		r.SuccessRate, r.AvgARSeconds, r.UniqueDays, r.QRHandoff, r.CTAClicks, r.FirstSeen,
		r.LastSeen, r.Attributes,
	}
}

// ActivityRow is one included record with the key it resolved to.
type ActivityRow struct {
	VisitorKey   string     `json:"visitor_key" yaml:"visitor_key"`
	SessionToken string     `json:"session_token" yaml:"session_token"`
	Timestamp    time.Time  `json:"timestamp" yaml:"timestamp"`
	VisitorHint  string     `json:"visitor_hint" yaml:"visitor_hint"`
	Attributes   string     `json:"attributes" yaml:"attributes"`
	ARSeconds    float64    `json:"ar_seconds" yaml:"ar_seconds"`
	Succeeded    bool       `json:"succeeded" yaml:"succeeded"`
	State        string     `json:"state" yaml:"state"`
	QRScanned    bool       `json:"qr_scanned" yaml:"qr_scanned"`
	CTAClicked   bool       `json:"cta_clicked" yaml:"cta_clicked"`
	CTATimestamp *time.Time `json:"cta_timestamp,omitempty" yaml:"cta_timestamp,omitempty"`
	CTALabel     string     `json:"cta_label" yaml:"cta_label"`
	CTATargetURL string     `json:"cta_target_url" yaml:"cta_target_url"`
	Latitude     *float64   `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

var activityHeader = []string{
	"visitor_key", "session_token", "timestamp", "visitor_hint", "attributes", "ar_seconds",
	"succeeded", "state", "qr_scanned", "cta_clicked", "cta_timestamp", "cta_label",
	"cta_target_url", "latitude", "longitude",
}

func (r ActivityRow) values() []any {
	return []any{
		r.VisitorKey, r.SessionToken, r.Timestamp, r.VisitorHint, r.Attributes, r.ARSeconds,
		r.Succeeded, r.State, r.QRScanned, r.CTAClicked, r.CTATimestamp, r.CTALabel,
		r.CTATargetURL, r.Latitude, r.Longitude,
	}
}

// VisitorRows builds one row per visitor, in the given order.
func VisitorRows(vs []analytics.Visitor, opts Options) []VisitorRow {
	rows := make([]VisitorRow, 0, len(vs))
	for _, v := range vs {
		row := VisitorRow{
			Label:        v.DisplayLabel,
			Key:          v.ID,
			Source:       string(v.IdentitySource),
			Score:        v.IntentScore,
			Tier:         string(v.IntentTier),
			ARSeconds:    v.TotalARSeconds,
			Sessions:     v.SessionCount,
			ARSessions:   v.ARSessionCount,
			Views:        v.ViewCount,
			SuccessRate:  v.SuccessRatePercent(),
			AvgARSeconds: round(v.AverageARSeconds(), 1),
			UniqueDays:   v.UniqueDayCount,
			QRHandoff:    v.HadQRHandoff,
			CTAClicks:    v.CTAClickCount,
			FirstSeen:    v.FirstSeen,
			LastSeen:     v.LastSeen,
			Attributes:   FormatAttributes(v.MergedAttributes),
		}
		if opts.Anonymize {
			row.Label = visitors.Alias(v.ID)
			row.Key = visitors.Pseudonym(v.ID)
			row.Attributes = ""
		}
		rows = append(rows, row)
	}
	return rows
}

// ActivityRows builds one row per included record, in input order. The row
// count always equals the sum of the visitors' view counts.
func ActivityRows(res *analytics.Result, opts Options) []ActivityRow {
	if res == nil {
		return []ActivityRow{}
	}
	rows := make([]ActivityRow, 0, len(res.Records))
	for _, ar := range res.Records {
		r := ar.Record
		row := ActivityRow{
			VisitorKey:   ar.Identity.Key,
			SessionToken: r.SessionToken,
			Timestamp:    r.Timestamp,
			VisitorHint:  r.VisitorHint,
			Attributes:   FormatAttributes(r.Attributes),
			ARSeconds:    r.EngagementSeconds(),
			Succeeded:    r.Succeeded,
			State:        string(r.EngagementState),
			QRScanned:    r.QRScanned,
			CTAClicked:   r.CTAClicked,
			CTATimestamp: r.CTATimestamp,
			CTALabel:     r.CTALabel,
			CTATargetURL: r.CTATargetURL,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
		}
		if opts.Anonymize {
			row.VisitorKey = visitors.Pseudonym(ar.Identity.Key)
			row.VisitorHint = ""
			row.Attributes = ""
			row.Latitude = nil
			row.Longitude = nil
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatAttributes renders attributes as "key:value" pairs sorted by key and
// joined with "; ". Pairs with a blank value are omitted.
func FormatAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k, v := range attrs {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + ":" + strings.TrimSpace(attrs[k])
	}
	return strings.Join(pairs, "; ")
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
