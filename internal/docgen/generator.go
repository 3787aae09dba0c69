package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/llm"
	"github.com/abhisek/tutordesk/internal/store"
)

// ReportReader supplies the student's current report text as prompt context.
type ReportReader interface {
	Read(ctx context.Context, student *store.Student) (string, error)
}

// Counter bumps the student's monthly generation count.
type Counter interface {
	IncrementGenerationCount(ctx context.Context, teacherID, studentID int64, now time.Time) (int, error)
}

// Config controls the generator.
type Config struct {
	// MonthlyCap is the soft per-student generation cap. Zero disables it;
	// exceeding it flags the document, it never blocks generation.
	MonthlyCap int
}

// Generator produces documents through the LLM provider.
type Generator struct {
	provider llm.Provider
	reports  ReportReader
	counter  Counter
	cfg      Config
	log      zerolog.Logger

	now func() time.Time
}

// New creates a Generator.
func New(provider llm.Provider, reports ReportReader, counter Counter, cfg Config, log zerolog.Logger) *Generator {
	return &Generator{
		provider: provider,
		reports:  reports,
		counter:  counter,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// diagnosticOutput is the raw structured response for diagnostic tests.
type diagnosticOutput struct {
	Test      string `json:"test"`
	AnswerKey string `json:"answer_key"`
	Summary   string `json:"summary"`
}

// Generate produces one document. The feedback path (PreviousDraft set)
// rewrites the prior draft; otherwise the category prompt goes out with the
// student profile and report text as context.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) (*Document, error) {
	ctx = llm.WithPurpose(ctx, "doc-"+input.Category.String())
	ctx = llm.WithStudent(ctx, input.Student.ID)

	spec := input.Category.spec()

	req := llm.Request{
		System:      systemPrompt,
		Model:       input.Teacher.Model,
		MaxTokens:   spec.maxTokens,
		Temperature: spec.temperature,
	}
	if input.Category == CategoryDiagnosticTest {
		req.Schema = DiagnosticSchema
	}

	var userMsg string
	if input.PreviousDraft != "" {
		userMsg = buildFeedbackMessage(input)
	} else {
		userMsg = buildUserMessage(input, ProfileSummary(input.Student.Profile), g.reportContext(ctx, input))
	}
	req.Messages = []llm.Message{{Role: llm.RoleUser, Content: userMsg}}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", input.Category, err)
	}

	doc := &Document{Category: input.Category, Format: input.Format}
	if input.Category == CategoryDiagnosticTest {
		var out diagnosticOutput
		if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
			return nil, fmt.Errorf("parse diagnostic output: %w", err)
		}
		doc.Text = out.Test
		doc.AnswerKey = out.AnswerKey
		doc.Summary = out.Summary
	} else {
		doc.Text = resp.Content
	}

	// Accounting is best-effort: a counter failure never loses the
	// generated document.
	count, err := g.counter.IncrementGenerationCount(ctx, input.Teacher.ID, input.Student.ID, g.now())
	if err != nil {
		g.log.Warn().Err(err).Int64("student_id", input.Student.ID).Msg("failed to bump generation count")
	} else {
		doc.MonthlyCount = count
		doc.CapExceeded = g.cfg.MonthlyCap > 0 && count > g.cfg.MonthlyCap
	}

	return doc, nil
}

// reportContext fetches the student report for the prompt. Failures degrade
// to no context; chat replies and progress reports are the ones that really
// need it, and even they survive without.
func (g *Generator) reportContext(ctx context.Context, input GenerateInput) string {
	text, err := g.reports.Read(ctx, input.Student)
	if err != nil {
		g.log.Warn().Err(err).Int64("student_id", input.Student.ID).Msg("report context unavailable")
		return ""
	}
	return text
}
