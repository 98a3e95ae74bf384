package analytics

import (
	"sort"
	"time"

	"arpulse/internal/activity"
)

// dayLayout buckets timestamps by the calendar date they carry, in their own
// location.
const dayLayout = "2006-01-02"

// Session is one visit, identified by a single session token.
type Session struct {
	Token     string    `json:"token"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Events    int       `json:"events"`
	AREngaged bool      `json:"ar_engaged"`
	ARSeconds float64   `json:"ar_seconds"`
	CTAClicks int       `json:"cta_clicks"`
	QRHandoff bool      `json:"qr_handoff"`
}

// chronological returns a copy of records sorted by timestamp. Records with
// equal timestamps keep their input order.
func chronological(records []activity.Record) []activity.Record {
	ordered := make([]activity.Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}

// isARSession reports whether a record shows actual AR engagement: either
// time was spent in the viewer, or a successful attempt reached an engaged
// state.
func isARSession(r activity.Record) bool {
	return r.EngagementSeconds() > 0 || (r.Succeeded && r.EngagementState.Engaged())
}

// SegmentSessions groups records by their session token. The input must be
// in ascending timestamp order; sessions come back ordered by start time.
// A session counts as AR-engaged once, however many of its records qualify.
func SegmentSessions(ordered []activity.Record) []Session {
	index := make(map[string]int)
	var sessions []Session

	for _, r := range ordered {
		pos, ok := index[r.SessionToken]
		if !ok {
			pos = len(sessions)
			index[r.SessionToken] = pos
			sessions = append(sessions, Session{Token: r.SessionToken, Start: r.Timestamp, End: r.Timestamp})
		}

		s := &sessions[pos]
		s.Events++
		if r.Timestamp.Before(s.Start) {
			s.Start = r.Timestamp
		}
		if r.Timestamp.After(s.End) {
			s.End = r.Timestamp
		}
		s.ARSeconds += r.EngagementSeconds()
		if isARSession(r) {
			s.AREngaged = true
		}
		if r.CTAClicked {
			s.CTAClicks++
		}
		if r.QRScanned {
			s.QRHandoff = true
		}
	}

	return sessions
}

// countARSessions returns the number of sessions with AR engagement.
func countARSessions(sessions []Session) int {
	n := 0
	for _, s := range sessions {
		if s.AREngaged {
			n++
		}
	}
	return n
}

// countUniqueDays returns the number of distinct calendar dates among the
// records' timestamps.
func countUniqueDays(records []activity.Record) int {
	days := make(map[string]struct{})
	for _, r := range records {
		days[r.Timestamp.Format(dayLayout)] = struct{}{}
	}
	return len(days)
}
