// Package report owns the cumulative per-student text report artifact: a
// plan block that is written once and never rewritten, an optional progress
// summary, and dated section entries appended in arrival order.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PlanMarker is the literal line terminating the plan block. Section content
// containing it is rejected so the block boundary stays unambiguous.
const PlanMarker = "---END PLAN---"

const summaryHeader = "**Progress overview:**"

// IsPlanLabel reports whether the section label denotes the initial plan.
// Labels are compared case-insensitively.
func IsPlanLabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "plan", "study plan", "план", "план уроков":
		return true
	}
	return false
}

// Artifact is the parsed report structure. Render(Parse(text)) preserves
// plan content byte for byte.
type Artifact struct {
	// Plan is the plan block text (header line included), without the
	// marker line. Empty when no plan has been written yet.
	Plan string

	// Summary is the latest progress overview, empty if none.
	Summary string

	// Rest holds all section entries in arrival order.
	Rest string
}

// Parse splits raw artifact text into plan, summary and entries.
func Parse(text string) Artifact {
	var a Artifact

	if idx := strings.Index(text, PlanMarker+"\n"); idx >= 0 {
		a.Plan = text[:idx]
		text = text[idx+len(PlanMarker)+1:]
	}

	if strings.HasPrefix(text, "\n"+summaryHeader+"\n") {
		body := text[len(summaryHeader)+2:]
		if idx := strings.Index(body, "\n### "); idx >= 0 {
			a.Summary = strings.TrimRight(body[:idx], "\n")
			text = body[idx:]
		} else {
			a.Summary = strings.TrimRight(body, "\n")
			text = ""
		}
	}

	a.Rest = text
	return a
}

// Render recombines the artifact into its persisted text form.
func (a Artifact) Render() string {
	var b strings.Builder

	if a.Plan != "" {
		b.WriteString(a.Plan)
		b.WriteString(PlanMarker + "\n")
	}
	if a.Summary != "" {
		b.WriteString("\n" + summaryHeader + "\n")
		b.WriteString(a.Summary)
		b.WriteString("\n")
	}
	b.WriteString(a.Rest)

	return b.String()
}

// entryHeader matches the dated header line every appended section starts
// with. Anchoring on the trailing "(date):" keeps markdown headings inside
// generated content out of the count.
var entryHeader = regexp.MustCompile(`(?m)^### .+ \(\d{4}-\d{2}-\d{2}[^)]*\):$`)

// SectionCount counts section entries, plan excluded.
func (a Artifact) SectionCount() int {
	return len(entryHeader.FindAllStringIndex(a.Rest, -1))
}

// HasPlan reports whether the plan block has been written.
func (a Artifact) HasPlan() bool {
	return a.Plan != ""
}

// AppendEntry adds a dated section entry to the artifact.
func (a *Artifact) AppendEntry(label, content string, now time.Time) {
	a.Rest += formatEntry(label, content, now)
}

// SetPlan writes the plan block. The caller must check HasPlan first; the
// plan is never replaced once present.
func (a *Artifact) SetPlan(label, content string, now time.Time) {
	a.Plan = fmt.Sprintf("### %s (%s):\n%s\n", label, now.Format("2006-01-02"), content)
}

func formatEntry(label, content string, now time.Time) string {
	return fmt.Sprintf("\n### %s (%s):\n%s\n", label, now.Format(time.RFC3339), content)
}

// EstimateTokens approximates the token length of text from its word count.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 0.75)
}
