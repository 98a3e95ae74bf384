package analytics

// Summary holds population-wide totals for one analysis run.
type Summary struct {
	Visitors       int                `json:"visitors"`
	Records        int                `json:"records"`
	Excluded       int                `json:"excluded"`
	Tiers          map[Tier]int       `json:"tiers"`
	TotalARSeconds float64            `json:"total_ar_seconds"`
	CTAClicks      int                `json:"cta_clicks"`
	QRHandoffs     int                `json:"qr_handoffs"`
	MeanScore      float64            `json:"mean_score"`
	Mode           ClassificationMode `json:"mode"`
}

// Summarize totals a result. Every tier is present in Tiers, zero or not.
func Summarize(res *Result) Summary {
	s := Summary{Tiers: make(map[Tier]int, len(Tiers)), Mode: ModeNone}
	for _, t := range Tiers {
		s.Tiers[t] = 0
	}
	if res == nil {
		return s
	}

	s.Visitors = len(res.Visitors)
	s.Records = len(res.Records)
	s.Excluded = len(res.Excluded)
	s.Mode = res.Classification.Mode
	s.MeanScore = res.Classification.Mean

	for _, v := range res.Visitors {
		s.Tiers[v.IntentTier]++
		s.TotalARSeconds += v.TotalARSeconds
		s.CTAClicks += v.CTAClickCount
		if v.HadQRHandoff {
			s.QRHandoffs++
		}
	}
	return s
}
