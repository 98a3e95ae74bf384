package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// wireRecord mirrors the backend log export. Every field is lenient: values
// of the wrong type decode as absent instead of failing the batch.
type wireRecord struct {
	VisitorHint     flexString     `json:"visitor_hint"`
	Attributes      flexAttributes `json:"auxiliary_attributes"`
	SessionToken    flexString     `json:"session_token"`
	Timestamp       flexTime       `json:"timestamp"`
	ARSeconds       flexFloat      `json:"ar_engagement_seconds"`
	Succeeded       flexBool       `json:"succeeded"`
	EngagementState flexString     `json:"ar_engagement_state"`
	QRScanned       flexBool       `json:"qr_was_scanned"`
	CTAClicked      flexBool       `json:"cta_clicked"`
	CTATimestamp    flexTime       `json:"cta_timestamp"`
	CTATargetURL    flexString     `json:"cta_target_url"`
	CTALabel        flexString     `json:"cta_label"`
	Latitude        flexFloat      `json:"latitude"`
	Longitude       flexFloat      `json:"longitude"`
}

// Decode reads a log export: either a JSON array of records or an object
// with a "logs" array. Elements that are not objects decode as empty records,
// which Validate later rejects.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Record{}, nil
	}

	var elements []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}
	case '{':
		var envelope struct {
			Logs []json.RawMessage `json:"logs"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode activity log: %w", err)
		}
		elements = envelope.Logs
	default:
		return nil, fmt.Errorf("failed to decode activity log: expected array or object")
	}

	records := make([]Record, 0, len(elements))
	for _, raw := range elements {
		var w wireRecord
		if err := json.Unmarshal(raw, &w); err != nil {
			records = append(records, Record{})
			continue
		}
		records = append(records, w.toRecord())
	}
	return records, nil
}

func (w wireRecord) toRecord() Record {
	rec := Record{
		VisitorHint:     w.VisitorHint.value,
		Attributes:      w.Attributes.value,
		SessionToken:    w.SessionToken.value,
		Timestamp:       w.Timestamp.value,
		Succeeded:       w.Succeeded.value,
		EngagementState: ParseEngagementState(w.EngagementState.value),
		QRScanned:       w.QRScanned.value,
		CTAClicked:      w.CTAClicked.value,
	}
	if w.ARSeconds.valid && w.ARSeconds.value > 0 {
		rec.ARSeconds = w.ARSeconds.value
	}
	if rec.CTAClicked {
		if !w.CTATimestamp.value.IsZero() {
			ts := w.CTATimestamp.value
			rec.CTATimestamp = &ts
		}
		rec.CTATargetURL = w.CTATargetURL.value
		rec.CTALabel = w.CTALabel.value
	}
	if w.Latitude.valid && w.Longitude.valid {
		lat, lng := w.Latitude.value, w.Longitude.value
		rec.Latitude = &lat
		rec.Longitude = &lng
	}
	return rec
}

type flexAttributes struct {
	value map[string]string
}

func (f *flexAttributes) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || len(raw) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(raw))
	for key, value := range raw {
		var s flexString
		if err := s.UnmarshalJSON(value); err != nil || !s.valid {
			continue
		}
		attrs[key] = s.value
	}
	if len(attrs) > 0 {
		f.value = attrs
	}
	return nil
}

type flexString struct {
	value string
	valid bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		f.value, f.valid = s, true
	case '{', '[':
		// nested structures are not attribute values
	default:
		// numbers and booleans keep their literal text
		f.value, f.valid = string(b), true
	}
	return nil
}

type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

type flexBool struct {
	value bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	text := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return nil
		}
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "1", "yes":
		f.value = true
	default:
		if v, err := strconv.ParseFloat(text, 64); err == nil && v != 0 {
			f.value = true
		}
	}
	return nil
}

type flexTime struct {
	value time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if t, ok := parseTimestamp(s); ok {
			f.value = t
		}
		return nil
	}
	// numeric timestamps are Unix milliseconds
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || ms <= 0 {
		return nil
	}
	f.value = time.UnixMilli(ms).UTC()
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
