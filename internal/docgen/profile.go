package docgen

import (
	"encoding/json"
	"strings"
)

// studentProfile is the structured shape of the profile column.
type studentProfile struct {
	Goal    string `json:"goal"`
	Level   string `json:"level"`
	Profile string `json:"profile"`
}

// ProfileSummary extracts a one-line student description from the profile
// column. The column is teacher-entered: valid JSON yields the "profile"
// field, or "goal, уровень: level" assembled from the parts; anything that
// fails to parse degrades to the raw text. Never errors.
func ProfileSummary(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}

	var p studentProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return text
	}

	if p.Profile != "" {
		return p.Profile
	}
	if p.Goal == "" && p.Level == "" {
		return ""
	}
	return p.Goal + ", уровень: " + p.Level
}
