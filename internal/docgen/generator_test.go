package docgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/abhisek/tutordesk/internal/llm"
	"github.com/abhisek/tutordesk/internal/store"
)

type fakeReports struct {
	text string
	err  error
}

func (f *fakeReports) Read(_ context.Context, _ *store.Student) (string, error) {
	return f.text, f.err
}

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeCounter) IncrementGenerationCount(_ context.Context, _, _ int64, _ time.Time) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func newTestGenerator(provider llm.Provider, cfg Config) (*Generator, *fakeReports, *fakeCounter) {
	reports := &fakeReports{}
	counter := &fakeCounter{}
	g := New(provider, reports, counter, cfg, zerolog.Nop())
	g.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return g, reports, counter
}

func genInput(c Category) GenerateInput {
	return GenerateInput{
		Teacher:  promptTeacher("en"),
		Student:  promptStudent(),
		Category: c,
	}
}

func TestGenerateReturnsDocument(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "Exercise 1: solve x+2=5"})
	g, _, counter := newTestGenerator(mock, Config{})

	doc, err := g.Generate(context.Background(), genInput(CategoryHomework))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Text != "Exercise 1: solve x+2=5" {
		t.Errorf("Text = %q", doc.Text)
	}
	if doc.MonthlyCount != 1 {
		t.Errorf("MonthlyCount = %d, want 1", doc.MonthlyCount)
	}
	if counter.calls != 1 {
		t.Errorf("counter calls = %d, want 1", counter.calls)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Model != "gpt-4o-mini" {
		t.Errorf("request did not carry teacher model: %+v", mock.Calls)
	}
}

func TestGenerateIncludesReportContext(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "report text"})
	g, reports, _ := newTestGenerator(mock, Config{})
	reports.text = "### Lesson (2024-06-10):\ncovered fractions\n"

	if _, err := g.Generate(context.Background(), genInput(CategoryProgressReport)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "covered fractions") {
		t.Error("report context missing from prompt")
	}
}

func TestGenerateSurvivesReportReadFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "ok"})
	g, reports, _ := newTestGenerator(mock, Config{})
	reports.err = errors.New("drive down")

	doc, err := g.Generate(context.Background(), genInput(CategoryHomework))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Text != "ok" {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestGenerateFeedbackPath(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "revised"})
	g, _, _ := newTestGenerator(mock, Config{})

	input := genInput(CategoryHomework)
	input.PreviousDraft = "old draft"
	input.Feedback = "make it harder"

	if _, err := g.Generate(context.Background(), input); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "old draft") || !strings.Contains(prompt, "make it harder") {
		t.Errorf("feedback prompt incomplete:\n%s", prompt)
	}
}

func TestGenerateFeedbackWithoutDraftFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "fresh"})
	g, _, _ := newTestGenerator(mock, Config{})

	input := genInput(CategoryHomework)
	input.Feedback = "orphan feedback"

	if _, err := g.Generate(context.Background(), input); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	prompt := mock.Calls[0].Messages[0].Content
	if strings.Contains(prompt, "orphan feedback") {
		t.Errorf("feedback used without a previous draft:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Create homework") {
		t.Errorf("normal prompt missing:\n%s", prompt)
	}
}

func TestGenerateDiagnosticTest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: `{"test":"1. What is 2+2?","answer_key":"1. 4","summary":"Arithmetic basics check."}`,
	})
	g, _, _ := newTestGenerator(mock, Config{})

	doc, err := g.Generate(context.Background(), genInput(CategoryDiagnosticTest))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Text != "1. What is 2+2?" {
		t.Errorf("Text = %q", doc.Text)
	}
	if doc.AnswerKey != "1. 4" {
		t.Errorf("AnswerKey = %q", doc.AnswerKey)
	}
	if doc.Summary != "Arithmetic basics check." {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if doc.ReportContent() != doc.Summary {
		t.Error("diagnostic report content must be the summary, not the test")
	}
	if mock.Calls[0].Schema == nil {
		t.Error("diagnostic request missing schema")
	}
}

func TestGenerateNonDiagnosticReportContentIsText(t *testing.T) {
	doc := &Document{Category: CategoryHomework, Text: "body"}
	if doc.ReportContent() != "body" {
		t.Errorf("ReportContent = %q", doc.ReportContent())
	}
}

func TestGenerateCapExceeded(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: "one"},
		llm.MockResponse{Content: "two"},
	)
	g, _, counter := newTestGenerator(mock, Config{MonthlyCap: 1})
	counter.count = 0

	doc, err := g.Generate(context.Background(), genInput(CategoryHomework))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.CapExceeded {
		t.Error("cap flagged at count 1 with cap 1")
	}

	doc, err = g.Generate(context.Background(), genInput(CategoryHomework))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !doc.CapExceeded {
		t.Error("cap not flagged at count 2 with cap 1")
	}
}

func TestGenerateCounterFailureNonFatal(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "ok"})
	g, _, counter := newTestGenerator(mock, Config{})
	counter.err = errors.New("db down")

	doc, err := g.Generate(context.Background(), genInput(CategoryHomework))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Text != "ok" {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	g, _, counter := newTestGenerator(mock, Config{})

	if _, err := g.Generate(context.Background(), genInput(CategoryHomework)); err == nil {
		t.Fatal("expected error")
	}
	if counter.calls != 0 {
		t.Error("counter bumped on failed generation")
	}
}

func TestProfileSummary(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"profile key wins", `{"goal":"ОГЭ","level":"средний","profile":"готовится к ОГЭ, уверенная алгебра"}`, "готовится к ОГЭ, уверенная алгебра"},
		{"assembled from parts", `{"goal":"ОГЭ","level":"средний"}`, "ОГЭ, уровень: средний"},
		{"malformed degrades to raw", `подготовка к экзамену`, "подготовка к экзамену"},
		{"empty", ``, ""},
		{"empty object", `{}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ProfileSummary(datatypes.JSON(tc.raw)); got != tc.want {
				t.Errorf("ProfileSummary(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
