package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpulse/internal/analytics"
	"arpulse/internal/testsupport"
)

func ids(vs []analytics.Visitor) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestSort(t *testing.T) {
	vs := []analytics.Visitor{
		{ID: "a", DisplayLabel: "Zed", IntentScore: 40, TotalARSeconds: 10, SessionCount: 3, ViewCount: 4, SuccessCount: 1, LastSeen: testsupport.DaysAgo(3)},
		{ID: "b", DisplayLabel: "amy", IntentScore: 90, TotalARSeconds: 300, SessionCount: 1, ViewCount: 2, SuccessCount: 2, CTAClickCount: 1, LastSeen: testsupport.DaysAgo(1)},
		{ID: "c", DisplayLabel: "Bob", IntentScore: 40, TotalARSeconds: 50, SessionCount: 2, ViewCount: 10, SuccessCount: 5, LastSeen: testsupport.DaysAgo(7)},
	}

	tests := []struct {
		key  analytics.SortKey
		desc bool
		want []string
	}{
		{analytics.SortByIntentScore, true, []string{"b", "a", "c"}},
		{analytics.SortByIntentScore, false, []string{"a", "c", "b"}},
		{analytics.SortByARSeconds, true, []string{"b", "c", "a"}},
		{analytics.SortBySessionCount, true, []string{"a", "c", "b"}},
		{analytics.SortByARSuccessRate, true, []string{"b", "c", "a"}},
		{analytics.SortByViewCount, false, []string{"b", "a", "c"}},
		{analytics.SortByCTAClicks, true, []string{"b", "a", "c"}},
		{analytics.SortByLastSeen, true, []string{"b", "a", "c"}},
		{analytics.SortByLabel, false, []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		name := string(tt.key)
		if tt.desc {
			name += " desc"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(analytics.Sort(vs, tt.key, tt.desc)))
		})
	}

	t.Run("Input is not modified", func(t *testing.T) {
		analytics.Sort(vs, analytics.SortByLabel, true)
		assert.Equal(t, []string{"a", "b", "c"}, ids(vs))
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, analytics.Sort(nil, analytics.SortByIntentScore, true))
	})
}

func TestParseSortKey(t *testing.T) {
	for _, key := range analytics.SortKeys {
		got, err := analytics.ParseSortKey(string(key))
		require.NoError(t, err)
		assert.Equal(t, key, got)
	}

	got, err := analytics.ParseSortKey("  Intent_Score ")
	require.NoError(t, err)
	assert.Equal(t, analytics.SortByIntentScore, got)

	_, err = analytics.ParseSortKey("price")
	assert.Error(t, err)
}
