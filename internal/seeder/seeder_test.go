package seeder_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/activity"
	"arpulse/internal/analytics"
	"arpulse/internal/seeder"
	"arpulse/internal/testsupport"
)

func TestGenerate(t *testing.T) {
	s := seeder.NewSeeder(testsupport.DiscardLogger(), 50, 42, testsupport.ReferenceNow)

	first, err := s.Generate(context.Background())
	require.NoError(t, err)
	second, err := s.Generate(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second, "same seed yields the same logs")

	for _, r := range first {
		assert.True(t, r.Timestamp.After(testsupport.DaysAgo(31)))
		assert.True(t, r.Timestamp.Before(testsupport.ReferenceNow.Add(time.Hour)))
		if r.CTAClicked {
			assert.NotNil(t, r.CTATimestamp)
			assert.NotEmpty(t, r.CTALabel)
		}
		if r.ARSeconds > 0 {
			assert.True(t, r.Succeeded)
		}
	}

	t.Run("Different seeds differ", func(t *testing.T) {
		other, err := seeder.NewSeeder(testsupport.DiscardLogger(), 50, 7, testsupport.ReferenceNow).Generate(context.Background())
		require.NoError(t, err)
		assert.NotEqual(t, first, other)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Generate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWriteRoundTrip(t *testing.T) {
	s := seeder.NewSeeder(testsupport.DiscardLogger(), 30, 1, testsupport.ReferenceNow)
	s.MalformedRate = 0

	var buf bytes.Buffer
	n, err := s.Write(context.Background(), &buf)
	require.NoError(t, err)

	records, err := activity.Decode(&buf)
	require.NoError(t, err)
	assert.Len(t, records, n)

	res, err := analytics.Analyze(records, analytics.Options{Now: testsupport.ReferenceNow})
	require.NoError(t, err)
	assert.Empty(t, res.Excluded)
	assert.NotEmpty(t, res.Visitors)
	assert.LessOrEqual(t, len(res.Visitors), 30+30*3)
}
