package timeframe

import (
	"fmt"
	"strings"
	"time"
)

type WindowParserParams struct {
	FromDate string
	ToDate   string
	Tz       string
}

// WindowParser turns command-line dates into a report window and resolves
// the reference time used for recency scoring.
type WindowParser struct {
	timeProvider TimeProvider
}

func NewWindowParser(timeProvider ...TimeProvider) *WindowParser {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}

	return &WindowParser{
		timeProvider: provider,
	}
}

func loadLocation(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("error loading timezone: %w", err)
	}
	return loc, nil
}

// ParseWindow builds a window from YYYY-MM-DD dates interpreted in the given
// timezone. Both dates are inclusive: from starts at midnight and to ends at
// the last nanosecond of its day. Empty dates leave that side open.
func (p *WindowParser) ParseWindow(params WindowParserParams) (*Window, error) {
	loc, err := loadLocation(params.Tz)
	if err != nil {
		return nil, err
	}

	w := &Window{Tz: loc}
	if params.FromDate != "" {
		from, err := time.ParseInLocation(DateLayout, strings.TrimSpace(params.FromDate), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid 'from' date: %w", err)
		}
		w.From = from
	}
	if params.ToDate != "" {
		to, err := time.ParseInLocation(DateLayout, strings.TrimSpace(params.ToDate), loc)
		if err != nil {
			return nil, fmt.Errorf("invalid 'to' date: %w", err)
		}
		w.To = endOfDay(to)
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// ResolveNow returns the reference time for a run. An empty value uses the
// provider's clock; otherwise RFC 3339 timestamps are used as given and bare
// dates mean the end of that day in tz.
func (p *WindowParser) ResolveNow(value, tz string) (time.Time, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return p.timeProvider.Now(loc), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return endOfDay(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid 'now' value %q: expected RFC 3339 or YYYY-MM-DD", value)
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999999, d.Location())
}
