package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"arpulse/internal/activity"
)

// Seeder generates synthetic configurator interaction logs for demos and
// load testing. The same seed and reference time always produce the same
// logs.
type Seeder struct {
	Logger        *slog.Logger
	VisitorCount  int
	Seed          uint64
	Now           time.Time
	MalformedRate float64
}

// NewSeeder creates a new seeder instance
func NewSeeder(logger *slog.Logger, visitorCount int, seed uint64, now time.Time) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		Logger:        logger,
		VisitorCount:  visitorCount,
		Seed:          seed,
		Now:           now,
		MalformedRate: 0.01,
	}
}

// step is one interaction within a session journey.
type step string

const (
	stepView   step = "view"
	stepAR     step = "ar"
	stepARFail step = "ar_fail"
	stepQR     step = "qr"
	stepCTA    step = "cta"
)

// Session journeys, from casual browsing to a booked test drive. The CTA is
// only offered after a completed AR session, so every journey with a CTA
// has an AR step before it.
var journeyTemplates = [][]step{
	{stepView},
	{stepView, stepView},
	{stepView, stepARFail},
	{stepView, stepAR},
	{stepView, stepQR, stepAR},
	{stepView, stepAR, stepAR},
	{stepView, stepQR, stepAR, stepCTA},
	{stepView, stepAR, stepCTA},
	{stepQR, stepAR, stepAR, stepCTA},
}

var firstNames = []string{
	"Ana", "Ben", "Chloe", "Dmitri", "Elif", "Farah", "Gustav", "Hana", "Ivan", "Julia",
	"Kenji", "Lena", "Marco", "Nadia", "Omar", "Priya", "Quentin", "Rosa", "Sven", "Tara",
}

var ctaLabels = []string{"Book a test drive", "Request a quote", "Find a dealer", "Reserve now"}

var engagedStates = []activity.EngagementState{
	activity.StateActive, activity.StateCompleted, activity.StateCompleted, activity.StateRecovered,
}

// identityKind selects how a synthetic visitor identifies itself.
type identityKind int

const (
	identityAnonymous identityKind = iota
	identityHint
	identityEmail
	identityName
	identityCode
)

// Generate builds the interaction logs.
func (s *Seeder) Generate(ctx context.Context) ([]activity.Record, error) {
	start := time.Now()
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	now := s.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var records []activity.Record
	for v := 0; v < s.VisitorCount; v++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		kind := identityKind(rng.IntN(5))
		name := firstNames[rng.IntN(len(firstNames))]
		sessions := 1 + rng.IntN(4)
		if kind == identityAnonymous {
			// anonymous visitors cannot be linked across sessions
			sessions = 1
		}

		for sess := 0; sess < sessions; sess++ {
			token := fmt.Sprintf("s-%016x", rng.Uint64())
			journey := journeyTemplates[rng.IntN(len(journeyTemplates))]
			ts := now.Add(-time.Duration(rng.IntN(30*24*60*60)) * time.Second)

			for _, st := range journey {
				r := activity.Record{SessionToken: token, Timestamp: ts}
				applyIdentity(&r, kind, v, name)
				s.applyStep(rng, &r, st)
				if rng.Float64() < s.MalformedRate {
					r.SessionToken = ""
				}
				records = append(records, r)
				ts = ts.Add(time.Duration(10+rng.IntN(170)) * time.Second)
			}
		}
	}

	s.Logger.Info("Generated synthetic interaction logs",
		slog.Int("visitors", s.VisitorCount),
		slog.Int("records", len(records)),
		slog.Duration("elapsed", time.Since(start)))
	return records, nil
}

func applyIdentity(r *activity.Record, kind identityKind, index int, name string) {
	switch kind {
	case identityHint:
		r.VisitorHint = fmt.Sprintf("lead-%05d", index)
	case identityEmail:
		r.Attributes = map[string]string{"email": fmt.Sprintf("%s.%d@example.com", name, index)}
	case identityName:
		r.Attributes = map[string]string{"full_name": fmt.Sprintf("%s %d", name, index)}
	case identityCode:
		r.Attributes = map[string]string{"short_code": fmt.Sprintf("QR%04X", index)}
	}
}

func (s *Seeder) applyStep(rng *rand.Rand, r *activity.Record, st step) {
	switch st {
	case stepAR:
		r.Succeeded = true
		r.ARSeconds = float64(5+rng.IntN(240)) + float64(rng.IntN(10))/10
		r.EngagementState = engagedStates[rng.IntN(len(engagedStates))]
		if rng.Float64() < 0.3 {
			lat := 48 + rng.Float64()*6
			lng := 6 + rng.Float64()*8
			r.Latitude, r.Longitude = &lat, &lng
		}
	case stepARFail:
		r.Succeeded = false
		r.EngagementState = activity.StateOther
	case stepQR:
		r.QRScanned = true
	case stepCTA:
		ts := r.Timestamp
		r.CTAClicked = true
		r.CTATimestamp = &ts
		r.CTALabel = ctaLabels[rng.IntN(len(ctaLabels))]
		r.CTATargetURL = "https://dealers.example.com/book"
	}
}

// Write generates the logs and writes them as a {"logs": [...]} document,
// the same shape the backend exports.
func (s *Seeder) Write(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.Generate(ctx)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Logs []activity.Record `json:"logs"`
	}{Logs: records}); err != nil {
		return 0, fmt.Errorf("failed to encode logs: %w", err)
	}
	return len(records), nil
}
