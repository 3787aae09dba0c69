package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/drive"
	"github.com/abhisek/tutordesk/internal/llm"
	"github.com/abhisek/tutordesk/internal/store"
)

// ErrMarkerInContent is returned when section content contains the plan
// marker line.
var ErrMarkerInContent = errors.New("section content contains the plan marker")

// ErrNotOwned is returned when the student does not belong to the teacher.
var ErrNotOwned = errors.New("student does not belong to this teacher")

// Roster is the slice of relational state the manager needs.
type Roster interface {
	UpdateReportCache(ctx context.Context, studentID int64, text string) error
}

// Config tunes the compaction triggers.
type Config struct {
	// TokenBudget is the estimated token size past which the artifact is
	// fully compacted.
	TokenBudget int

	// SummaryEvery inserts a progress summary after every Nth section.
	SummaryEvery int
}

// DefaultConfig returns the production trigger settings.
func DefaultConfig() Config {
	return Config{
		TokenBudget:  7000,
		SummaryEvery: 5,
	}
}

// Manager is the single point of truth for a student's cumulative report.
// It guarantees the plan block is immutable and the artifact never grows
// unboundedly.
type Manager struct {
	storage  drive.Store
	provider llm.Provider
	roster   Roster
	cfg      Config
	log      zerolog.Logger

	locks *keyMutex
	now   func() time.Time
}

// NewManager creates a report manager.
func NewManager(storage drive.Store, provider llm.Provider, roster Roster, cfg Config, log zerolog.Logger) *Manager {
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = DefaultConfig().TokenBudget
	}
	if cfg.SummaryEvery <= 0 {
		cfg.SummaryEvery = DefaultConfig().SummaryEvery
	}
	return &Manager{
		storage:  storage,
		provider: provider,
		roster:   roster,
		cfg:      cfg,
		log:      log,
		locks:    newKeyMutex(),
		now:      time.Now,
	}
}

// Read fetches the current artifact text, empty when none exists yet.
func (m *Manager) Read(ctx context.Context, student *store.Student) (string, error) {
	data, _, err := m.storage.Read(ctx, drive.ReportPath(student.FolderName()))
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return string(data), nil
}

// AppendSection appends a dated section to the student's report and persists
// it. The first plan-labeled append becomes the immutable plan block. When
// the artifact exceeds the token budget it is compacted; otherwise every Nth
// section triggers a progress summary. Exactly one of the two runs per
// append, and a failed LLM call defers compaction without losing the append.
func (m *Manager) AppendSection(ctx context.Context, teacher *store.Teacher, student *store.Student, label, content string) error {
	if student.TeacherID != teacher.ID {
		return ErrNotOwned
	}
	if teacher.DriveToken == "" {
		return drive.ErrNoCredential
	}
	if containsMarker(content) {
		return ErrMarkerInContent
	}

	unlock := m.locks.Lock(teacher.ID, student.ID)
	defer unlock()

	path := drive.ReportPath(student.FolderName())
	data, _, err := m.storage.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	artifact := Parse(string(data))
	now := m.now()

	if IsPlanLabel(label) && !artifact.HasPlan() {
		artifact.SetPlan(label, content, now)
	} else {
		artifact.AppendEntry(label, content, now)
		m.maybeCompact(ctx, teacher, &artifact)
	}

	text := artifact.Render()
	if err := m.storage.WriteOver(ctx, path, []byte(text)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	// The row cache only feeds prompt context; the remote copy stays
	// authoritative, so a cache failure is logged and not surfaced.
	if err := m.roster.UpdateReportCache(ctx, student.ID, text); err != nil {
		m.log.Warn().Err(err).Int64("student_id", student.ID).Msg("failed to update report cache")
	}

	return nil
}

// maybeCompact applies at most one trigger: full compaction when over
// budget, else a periodic summary at the section cadence.
func (m *Manager) maybeCompact(ctx context.Context, teacher *store.Teacher, artifact *Artifact) {
	full := artifact.Render()

	if EstimateTokens(full) > m.cfg.TokenBudget {
		m.compact(ctx, teacher, artifact)
		return
	}

	count := artifact.SectionCount()
	if count > 0 && count%m.cfg.SummaryEvery == 0 {
		m.summarize(ctx, teacher, artifact)
	}
}

// summarize regenerates the progress overview, leaving all entries intact.
// Replacing the previous overview keeps the cadence idempotent.
func (m *Manager) summarize(ctx context.Context, teacher *store.Teacher, artifact *Artifact) {
	ctx = llm.WithPurpose(ctx, "report-summary")

	resp, err := m.provider.Generate(ctx, llm.Request{
		System: "You are a succinct summarizer.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Produce a short progress overview of the student from the following report:\n\n" + artifact.Render()},
		},
		Model:       teacher.Model,
		MaxTokens:   1024,
		Temperature: 0.5,
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("progress summary skipped")
		return
	}
	if containsMarker(resp.Content) {
		m.log.Warn().Msg("progress summary contained plan marker, skipped")
		return
	}

	artifact.Summary = resp.Content
}

// compact replaces all section entries with a condensed rewrite. The plan
// block is carried over verbatim.
func (m *Manager) compact(ctx context.Context, teacher *store.Teacher, artifact *Artifact) {
	ctx = llm.WithPurpose(ctx, "report-compact")

	resp, err := m.provider.Generate(ctx, llm.Request{
		System: "You are a succinct summarizer.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Condense the following lesson history into a compact rewrite. Keep every fact needed to continue teaching: covered topics, results, recurring difficulties.\n\n" + artifact.Rest},
		},
		Model:       teacher.Model,
		MaxTokens:   2048,
		Temperature: 0.5,
	})
	if err != nil {
		// Non-fatal: the append stays durable and the artifact simply
		// grows past budget until a later successful attempt.
		m.log.Warn().Err(err).Msg("report compaction deferred")
		return
	}
	if containsMarker(resp.Content) {
		m.log.Warn().Msg("compaction output contained plan marker, deferred")
		return
	}

	compacted := Artifact{Plan: artifact.Plan}
	compacted.AppendEntry("Compacted history", resp.Content, m.now())
	*artifact = compacted
}

func containsMarker(content string) bool {
	return strings.Contains(content, PlanMarker)
}
