// Package timeframe_test contains tests for the timeframe package
package timeframe_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/activity"
	"arpulse/internal/testsupport"
	"arpulse/internal/timeframe"
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("Failed to load time zone location: " + name)
	}
	return loc
}

func TestParseWindow(t *testing.T) {
	parser := timeframe.NewWindowParser(&timeframe.FixedTimeProvider{At: testsupport.ReferenceNow})

	t.Run("Open window when no dates are given", func(t *testing.T) {
		w, err := parser.ParseWindow(timeframe.WindowParserParams{})
		require.NoError(t, err)
		assert.True(t, w.IsOpen())
		assert.Equal(t, time.UTC, w.Tz)
		assert.Equal(t, "all", w.String())
	})

	t.Run("Dates are inclusive in the requested timezone", func(t *testing.T) {
		berlin := mustLoadLocation("Europe/Berlin")
		w, err := parser.ParseWindow(timeframe.WindowParserParams{
			FromDate: "2024-05-01",
			ToDate:   "2024-05-31",
			Tz:       "Europe/Berlin",
		})
		require.NoError(t, err)

		assert.True(t, w.From.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, berlin)))
		assert.True(t, w.To.Equal(time.Date(2024, 5, 31, 23, 59, 59, 999999999, berlin)))
		assert.True(t, w.Contains(time.Date(2024, 4, 30, 22, 0, 0, 0, time.UTC)), "midnight Berlin is 22:00 UTC")
		assert.False(t, w.Contains(time.Date(2024, 4, 30, 21, 59, 0, 0, time.UTC)))
		assert.True(t, w.Contains(time.Date(2024, 5, 31, 21, 59, 0, 0, time.UTC)))
		assert.False(t, w.Contains(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC)))
	})

	t.Run("Half-open windows", func(t *testing.T) {
		w, err := parser.ParseWindow(timeframe.WindowParserParams{FromDate: "2024-05-10"})
		require.NoError(t, err)
		assert.False(t, w.IsOpen())
		assert.True(t, w.To.IsZero())
		assert.True(t, w.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, w.Contains(time.Date(2024, 5, 9, 23, 59, 0, 0, time.UTC)))
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name   string
			params timeframe.WindowParserParams
		}{
			{"bad from", timeframe.WindowParserParams{FromDate: "05/01/2024"}},
			{"bad to", timeframe.WindowParserParams{ToDate: "yesterday"}},
			{"bad timezone", timeframe.WindowParserParams{FromDate: "2024-05-01", Tz: "Mars/Olympus"}},
			{"from after to", timeframe.WindowParserParams{FromDate: "2024-06-02", ToDate: "2024-06-01"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := parser.ParseWindow(tt.params)
				assert.Error(t, err)
			})
		}
	})

	t.Run("Same day window", func(t *testing.T) {
		w, err := parser.ParseWindow(timeframe.WindowParserParams{FromDate: "2024-06-01", ToDate: "2024-06-01"})
		require.NoError(t, err)
		assert.True(t, w.Contains(testsupport.ReferenceNow))
	})
}

func TestResolveNow(t *testing.T) {
	parser := timeframe.NewWindowParser(&timeframe.FixedTimeProvider{At: testsupport.ReferenceNow})

	t.Run("Empty value uses the provider", func(t *testing.T) {
		now, err := parser.ResolveNow("", "")
		require.NoError(t, err)
		assert.True(t, now.Equal(testsupport.ReferenceNow))
	})

	t.Run("RFC 3339 value", func(t *testing.T) {
		now, err := parser.ResolveNow("2024-05-20T08:30:00+02:00", "UTC")
		require.NoError(t, err)
		assert.True(t, now.Equal(time.Date(2024, 5, 20, 6, 30, 0, 0, time.UTC)))
	})

	t.Run("Bare date means end of day", func(t *testing.T) {
		now, err := parser.ResolveNow("2024-05-20", "Asia/Tokyo")
		require.NoError(t, err)
		assert.True(t, now.Equal(time.Date(2024, 5, 20, 23, 59, 59, 999999999, mustLoadLocation("Asia/Tokyo"))))
	})

	t.Run("Invalid value", func(t *testing.T) {
		_, err := parser.ResolveNow("soon", "UTC")
		assert.Error(t, err)
	})

	t.Run("Default provider reads the clock", func(t *testing.T) {
		before := time.Now()
		now, err := timeframe.NewWindowParser().ResolveNow("", "UTC")
		require.NoError(t, err)
		assert.False(t, now.Before(before.Add(-time.Second)))
	})
}

func TestWindowFilter(t *testing.T) {
	w := &timeframe.Window{
		From: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
	}
	records := []activity.Record{
		testsupport.NewRecord("a", time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)),
		testsupport.NewRecord("b", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)),
		testsupport.NewRecord("c", time.Time{}),
		testsupport.NewRecord("d", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)),
		testsupport.NewRecord("e", time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC)),
	}

	kept, dropped := w.Filter(records)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 3)
	assert.Equal(t, "b", kept[0].SessionToken)
	assert.Equal(t, "c", kept[1].SessionToken, "records without timestamps are left for validation")
	assert.Equal(t, "d", kept[2].SessionToken)

	t.Run("Nil and open windows keep everything", func(t *testing.T) {
		var nilWindow *timeframe.Window
		kept, dropped := nilWindow.Filter(records)
		assert.Len(t, kept, len(records))
		assert.Zero(t, dropped)

		kept, dropped = (&timeframe.Window{}).Filter(records)
		assert.Len(t, kept, len(records))
		assert.Zero(t, dropped)
	})
}
