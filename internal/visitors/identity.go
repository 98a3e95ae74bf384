package visitors

import (
	"strings"

	"arpulse/internal/activity"
)

// Source names the link in the resolution chain that produced a key.
type Source string

const (
	SourceHint    Source = "hint"
	SourceEmail   Source = "email"
	SourceName    Source = "name"
	SourceCode    Source = "code"
	SourceSession Source = "session"
)

const (
	maxHintLabelLength  = 20
	sessionLabelPrefix  = 12
	sessionLabelLeading = "Session "
)

// attributeTag is one rung of the auxiliary attribute priority list.
type attributeTag struct {
	source  Source
	aliases []string
}

// attributePriority is checked top to bottom; aliases match case-insensitively.
var attributePriority = []attributeTag{
	{source: SourceEmail, aliases: []string{"email", "e-mail", "e_mail", "mail"}},
	{source: SourceName, aliases: []string{"name", "full_name", "fullname", "customer_name"}},
	{source: SourceCode, aliases: []string{"code", "short_code", "shortcode", "ref"}},
}

// Identity is the resolved visitor key for a record.
type Identity struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Source Source `json:"source"`
}

// Resolve maps a record to its visitor identity. It is a pure function of the
// record: the same record always yields the same key, and every aggregation
// step groups records through it.
func Resolve(r activity.Record) Identity {
	if strings.TrimSpace(r.VisitorHint) != "" {
		return Identity{
			Key:    r.VisitorHint,
			Label:  truncate(r.VisitorHint, maxHintLabelLength),
			Source: SourceHint,
		}
	}

	if len(r.Attributes) > 0 {
		for _, tag := range attributePriority {
			if value, ok := lookupAttribute(r.Attributes, tag.aliases); ok {
				return Identity{Key: value, Label: value, Source: tag.source}
			}
		}
	}

	return Identity{
		Key:    r.SessionToken,
		Label:  sessionLabelLeading + prefix(r.SessionToken, sessionLabelPrefix),
		Source: SourceSession,
	}
}

// lookupAttribute returns the first non-blank value among the aliases.
// Exact key matches win over case-insensitive ones so the result does not
// depend on map iteration order.
func lookupAttribute(attrs map[string]string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if value := strings.TrimSpace(attrs[alias]); value != "" {
			return value, true
		}
	}
	for _, alias := range aliases {
		var match string
		found := false
		for key, value := range attrs {
			value = strings.TrimSpace(value)
			if value == "" || !strings.EqualFold(key, alias) {
				continue
			}
			// several keys can differ only by case; pick the smallest for determinism
			if !found || key < match {
				match, found = key, true
			}
		}
		if found {
			return strings.TrimSpace(attrs[match]), true
		}
	}
	return "", false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
