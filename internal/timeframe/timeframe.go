package timeframe

import (
	"fmt"
	"time"

	"arpulse/internal/activity"
)

// DateLayout is the calendar-date format accepted on the command line.
const DateLayout = "2006-01-02"

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// FixedTimeProvider always returns the same instant.
type FixedTimeProvider struct {
	At time.Time
}

func (p *FixedTimeProvider) Now(loc *time.Location) time.Time {
	return p.At.In(loc)
}

// Window restricts a batch to records inside [From, To]. A zero bound is
// open.
type Window struct {
	From time.Time
	To   time.Time
	Tz   *time.Location
}

// IsOpen reports whether the window accepts every timestamp.
func (w *Window) IsOpen() bool {
	return w == nil || (w.From.IsZero() && w.To.IsZero())
}

// Contains reports whether t falls inside the window, bounds included.
func (w *Window) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// Validate checks that the bounds are ordered.
func (w *Window) Validate() error {
	if !w.From.IsZero() && !w.To.IsZero() && w.From.After(w.To) {
		return fmt.Errorf("from (%s) must not be after to (%s)",
			w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
	}
	return nil
}

// String renders the window for log lines.
func (w *Window) String() string {
	if w.IsOpen() {
		return "all"
	}
	from, to := "-", "-"
	if !w.From.IsZero() {
		from = w.From.Format(time.RFC3339)
	}
	if !w.To.IsZero() {
		to = w.To.Format(time.RFC3339)
	}
	return from + ".." + to
}

// Filter keeps the records inside the window and returns how many were
// dropped. Records without a timestamp are kept so that validation can
// report them as excluded.
func (w *Window) Filter(records []activity.Record) ([]activity.Record, int) {
	if w.IsOpen() {
		return records, 0
	}
	kept := make([]activity.Record, 0, len(records))
	for _, r := range records {
		if r.Timestamp.IsZero() || w.Contains(r.Timestamp) {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}
