package analytics

import (
	"math"
	"sort"
)

// Tier is a coarse intent classification, relative to the current population.
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Tiers lists every tier from highest to lowest.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// ClassificationMode records which rule assigned the tiers.
type ClassificationMode string

const (
	ModeNone       ClassificationMode = "none"
	ModeScore      ClassificationMode = "score"
	ModePercentile ClassificationMode = "percentile"
)

const (
	spreadStdDevThreshold = 5.0
	spreadIQRThreshold    = 10
	thresholdStdDevFactor = 0.5
	highPercentileShare   = 0.2
	mediumPercentileShare = 0.6
)

// Classification is the outcome of classifying one population. Tiers is
// parallel to the scores passed to Classify.
type Classification struct {
	Mode          ClassificationMode `json:"mode"`
	Mean          float64            `json:"mean"`
	StdDev        float64            `json:"std_dev"`
	Q1            int                `json:"q1"`
	Median        int                `json:"median"`
	Q3            int                `json:"q3"`
	HighThreshold float64            `json:"high_threshold"`
	LowThreshold  float64            `json:"low_threshold"`
	Tiers         []Tier             `json:"tiers"`
}

// Classify assigns a tier to every score. Thresholds come from the batch's
// own distribution, so the same score can land in different tiers in
// different populations. An empty population yields an empty classification.
func Classify(scores []int) Classification {
	n := len(scores)
	if n == 0 {
		return Classification{Mode: ModeNone, Tiers: []Tier{}}
	}

	c := Classification{Tiers: make([]Tier, n)}
	c.Mean, c.StdDev = meanStdDev(scores)

	sorted := make([]int, n)
	copy(sorted, scores)
	sort.Ints(sorted)
	c.Q1 = sorted[quantileIndex(n, 0.25)]
	c.Median = sorted[quantileIndex(n, 0.5)]
	c.Q3 = sorted[quantileIndex(n, 0.75)]

	c.HighThreshold = math.Max(float64(c.Q3), c.Mean+thresholdStdDevFactor*c.StdDev)
	c.LowThreshold = math.Min(float64(c.Q1), c.Mean-thresholdStdDevFactor*c.StdDev)

	if c.StdDev > spreadStdDevThreshold || c.Q3-c.Q1 > spreadIQRThreshold {
		c.Mode = ModeScore
		for i, s := range scores {
			c.Tiers[i] = c.scoreTier(s)
		}
		return c
	}

	c.Mode = ModePercentile
	assignPercentileTiers(scores, c.Tiers)
	return c
}

// scoreTier applies the absolute thresholds. A score has to rise above the
// low threshold to reach Medium, so the bottom of a spread-out population
// (typically the zero scores) stays Low.
func (c Classification) scoreTier(score int) Tier {
	s := float64(score)
	switch {
	case s >= c.HighThreshold:
		return TierHigh
	case s > c.LowThreshold: // strict, so zeros under a zero low threshold stay Low
		return TierMedium
	default:
		return TierLow
	}
}

// assignPercentileTiers ranks the population by score, best first, and splits
// it 20/40/40. Equal scores keep their input order.
func assignPercentileTiers(scores []int, tiers []Tier) {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	for rank, idx := range order {
		position := float64(rank) / float64(n)
		switch {
		case position < highPercentileShare:
			tiers[idx] = TierHigh
		case position < mediumPercentileShare:
			tiers[idx] = TierMedium
		default:
			tiers[idx] = TierLow
		}
	}
}

func quantileIndex(n int, q float64) int {
	idx := int(math.Floor(float64(n) * q))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(scores []int) (float64, float64) {
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	return mean, math.Sqrt(variance)
}
