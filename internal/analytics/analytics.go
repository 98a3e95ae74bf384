// Package analytics turns raw interaction logs into per-visitor engagement
// summaries, buying-intent scores and population-relative intent tiers.
//
// The package is organized into focused modules:
//   - analytics.go: Analyze, the batch entry point
//   - visitors.go: the Visitor summary model
//   - sessions.go: session segmentation and unique-day bucketing
//   - accumulate.go: folding a visitor's records into counters
//   - scoring.go: the weighted intent score
//   - tiers.go: distribution-adaptive tier classification
//   - ranking.go: stable sorting by a selectable key
//   - summary.go: population totals
//
// Analyze is pure: it performs no I/O, reads no clock and keeps no state
// between calls. The same records and the same now always produce the same
// result.
package analytics

import (
	"errors"
	"time"

	"arpulse/internal/activity"
	"arpulse/internal/visitors"
)

// ErrNowRequired is returned when Analyze is called without a reference time.
var ErrNowRequired = errors.New("analytics: now must be supplied")

// Options configures an analysis run.
type Options struct {
	// Now is the reference time for recency scoring. Required.
	Now time.Time
}

// AttributedRecord is an included record together with the identity it
// resolved to.
type AttributedRecord struct {
	Identity visitors.Identity
	Record   activity.Record
}

// Result is the output of one analysis run.
type Result struct {
	Now            time.Time
	Visitors       []Visitor
	Records        []AttributedRecord
	Excluded       []activity.Exclusion
	Classification Classification
}

// group is every included record of one resolved identity.
type group struct {
	identity visitors.Identity
	records  []activity.Record
}

// Analyze aggregates a batch of records into scored and tiered visitors.
// Malformed records are excluded and reported in Result.Excluded. Visitors
// are returned in order of first appearance in the input.
func Analyze(records []activity.Record, opts Options) (*Result, error) {
	if opts.Now.IsZero() {
		return nil, ErrNowRequired
	}

	groups, attributed, excluded := groupRecords(records)

	built := make([]Visitor, len(groups))
	scores := make([]int, len(groups))
	for i, g := range groups {
		v := accumulate(g.identity, g.records)
		v.Breakdown = ScoreVisitor(v, opts.Now)
		v.IntentScore = v.Breakdown.Total
		built[i] = v
		scores[i] = v.IntentScore
	}

	classification := Classify(scores)
	for i := range built {
		built[i].IntentTier = classification.Tiers[i]
	}

	return &Result{
		Now:            opts.Now,
		Visitors:       built,
		Records:        attributed,
		Excluded:       excluded,
		Classification: classification,
	}, nil
}

// groupRecords is the single indexing pass: every valid record is resolved
// once and appended to its identity's group.
func groupRecords(records []activity.Record) ([]*group, []AttributedRecord, []activity.Exclusion) {
	index := make(map[string]int)
	var groups []*group
	included, excluded := activity.Partition(records)
	attributed := make([]AttributedRecord, 0, len(included))

	for _, r := range included {
		id := visitors.Resolve(r)
		pos, ok := index[id.Key]
		if !ok {
			pos = len(groups)
			index[id.Key] = pos
			groups = append(groups, &group{identity: id})
		}
		groups[pos].records = append(groups[pos].records, r)
		attributed = append(attributed, AttributedRecord{Identity: id, Record: r})
	}

	return groups, attributed, excluded
}
