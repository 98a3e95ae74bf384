package analytics

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the visitor field used for ranking.
type SortKey string

const (
	SortByIntentScore   SortKey = "intent_score"
	SortByARSeconds     SortKey = "total_ar_seconds"
	SortBySessionCount  SortKey = "session_count"
	SortByARSuccessRate SortKey = "ar_success_rate"
	SortByViewCount     SortKey = "view_count"
	SortByCTAClicks     SortKey = "cta_clicks"
	SortByLastSeen      SortKey = "last_seen"
	SortByLabel         SortKey = "label"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{
	SortByIntentScore,
	SortByARSeconds,
	SortBySessionCount,
	SortByARSuccessRate,
	SortByViewCount,
	SortByCTAClicks,
	SortByLastSeen,
	SortByLabel,
}

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// compareVisitors orders two visitors by key: numbers naturally, strings
// lexicographically.
func compareVisitors(a, b Visitor, key SortKey) int {
	switch key {
	case SortByARSeconds:
		return cmp.Compare(a.TotalARSeconds, b.TotalARSeconds)
	case SortBySessionCount:
		return cmp.Compare(a.SessionCount, b.SessionCount)
	case SortByARSuccessRate:
		return cmp.Compare(a.ARSuccessRate(), b.ARSuccessRate())
	case SortByViewCount:
		return cmp.Compare(a.ViewCount, b.ViewCount)
	case SortByCTAClicks:
		return cmp.Compare(a.CTAClickCount, b.CTAClickCount)
	case SortByLastSeen:
		return a.LastSeen.Compare(b.LastSeen)
	case SortByLabel:
		return strings.Compare(a.DisplayLabel, b.DisplayLabel)
	default:
		return cmp.Compare(a.IntentScore, b.IntentScore)
	}
}

// Sort returns a copy of vs ordered by key. The sort is stable: visitors that
// compare equal keep their relative order, so identical input always yields
// identical output.
func Sort(vs []Visitor, key SortKey, descending bool) []Visitor {
	sorted := make([]Visitor, len(vs))
	copy(sorted, vs)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compareVisitors(sorted[i], sorted[j], key)
		if descending {
			return c > 0
		}
		return c < 0
	})
	return sorted
}
