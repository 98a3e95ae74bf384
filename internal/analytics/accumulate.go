package analytics

import (
	"arpulse/internal/activity"
	"arpulse/internal/visitors"
)

// accumulate folds one identity's records into a Visitor. Score and tier are
// left for the caller: the score needs a reference time and the tier needs
// the whole population.
func accumulate(id visitors.Identity, records []activity.Record) Visitor {
	v := Visitor{
		ID:             id.Key,
		DisplayLabel:   id.Label,
		IdentitySource: id.Source,
	}
	if len(records) == 0 {
		return v
	}

	ordered := chronological(records)
	v.Sessions = SegmentSessions(ordered)
	v.SessionCount = len(v.Sessions)
	v.ARSessionCount = countARSessions(v.Sessions)
	v.UniqueDayCount = countUniqueDays(ordered)

	for i, r := range ordered {
		v.ViewCount++
		v.TotalARSeconds += r.EngagementSeconds()
		if r.Succeeded {
			v.SuccessCount++
		}
		if r.QRScanned {
			v.HadQRHandoff = true
		}
		if r.CTAClicked {
			v.CTAClickCount++
		}
		if i == 0 || r.Timestamp.Before(v.FirstSeen) {
			v.FirstSeen = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(v.LastSeen) {
			v.LastSeen = r.Timestamp
		}
		// ordered is ascending, so later timestamps overwrite earlier keys
		for key, value := range r.Attributes {
			if v.MergedAttributes == nil {
				v.MergedAttributes = make(map[string]string)
			}
			v.MergedAttributes[key] = value
		}
	}

	return v
}
