// Package docgen produces study documents for a student: plans, homework,
// tests, materials and the rest. Each category is a closed enum member
// carrying its own prompt template, token budget and report label, so the
// generator set is exhaustively checkable.
package docgen

import "github.com/abhisek/tutordesk/internal/store"

// Category identifies the kind of document being generated.
type Category int

const (
	CategoryPlan Category = iota
	CategoryHomework
	CategoryClasswork
	CategoryAssignment
	CategoryMaterials
	CategoryDiagnosticTest
	CategoryProgressReport
	CategorySolutionCheck
	CategoryChat
)

// Categories lists all document categories in menu order.
var Categories = []Category{
	CategoryPlan,
	CategoryHomework,
	CategoryClasswork,
	CategoryAssignment,
	CategoryMaterials,
	CategoryDiagnosticTest,
	CategoryProgressReport,
	CategorySolutionCheck,
	CategoryChat,
}

// categorySpec holds the per-category constants. Every accessor below
// switches over the full enum so a new category fails to compile until it
// gets a spec.
type categorySpec struct {
	slug        string // stable machine identifier, used in callbacks and logs
	dir         string // remote folder segment for rendered documents
	labelRU     string
	labelEN     string
	maxTokens   int
	temperature float64
}

func (c Category) spec() categorySpec {
	switch c {
	case CategoryPlan:
		return categorySpec{"plan", "StudyPlan", "План", "Plan", 4000, 0.7}
	case CategoryHomework:
		return categorySpec{"homework", "Homework", "Домашнее задание", "Homework", 3000, 0.7}
	case CategoryClasswork:
		return categorySpec{"classwork", "Classwork", "Контрольная работа", "Classwork", 3000, 0.7}
	case CategoryAssignment:
		return categorySpec{"assignment", "Assignments", "Задания", "Assignment", 3000, 0.7}
	case CategoryMaterials:
		return categorySpec{"materials", "Materials", "Материалы", "Materials", 2500, 0.7}
	case CategoryDiagnosticTest:
		return categorySpec{"diagnostic", "Diagnostics", "Диагностический тест", "Diagnostic test", 3000, 0.7}
	case CategoryProgressReport:
		return categorySpec{"progress", "Progress", "Отчёт о прогрессе", "Progress report", 1500, 0.5}
	case CategorySolutionCheck:
		return categorySpec{"solution-check", "SolutionChecks", "Проверка решения", "Solution check", 2000, 0.3}
	case CategoryChat:
		return categorySpec{"chat", "Chat", "Чат", "Chat", 1000, 0.7}
	}
	return categorySpec{}
}

// String returns the stable slug, e.g. "homework".
func (c Category) String() string { return c.spec().slug }

// Dir returns the remote folder segment rendered documents of this category
// are uploaded under.
func (c Category) Dir() string { return c.spec().dir }

// Label returns the human section label for the given language. It doubles
// as the report section label, so the Plan category's label is what the
// report manager recognizes as the plan insert.
func (c Category) Label(lang string) string {
	if lang == "ru" {
		return c.spec().labelRU
	}
	return c.spec().labelEN
}

// CategoryBySlug resolves a callback slug back to its category.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.spec().slug == slug {
			return c, true
		}
	}
	return 0, false
}

// Format selects the output format of the generated text.
type Format int

const (
	// FormatText is plain text, rendered with the built-in PDF writer.
	FormatText Format = iota
	// FormatTeX asks the model for a complete LaTeX document, rendered
	// with pdflatex.
	FormatTeX
)

// GenerateInput carries everything one generation call needs.
type GenerateInput struct {
	Teacher  *store.Teacher
	Student  *store.Student
	Category Category
	Format   Format

	// Topic narrows the prompt; for CategoryChat and CategorySolutionCheck
	// it carries the teacher's free-form message or the solution to check.
	Topic string

	// PreviousDraft and Feedback switch generation to the revision path:
	// the model is asked to apply the feedback to the previous draft while
	// keeping its structure. An empty PreviousDraft falls back to normal
	// generation.
	PreviousDraft string
	Feedback      string
}

// Document is one generated document.
type Document struct {
	Category Category
	Format   Format

	// Text is the document body shown to the teacher and rendered to PDF.
	Text string

	// AnswerKey is set only for CategoryDiagnosticTest.
	AnswerKey string

	// Summary is the short report-log line for CategoryDiagnosticTest;
	// the raw test never enters the report.
	Summary string

	// MonthlyCount is the student's generation count after this call.
	// CapExceeded is set when the count passed the configured soft cap.
	MonthlyCount int
	CapExceeded  bool
}

// ReportContent returns the text recorded into the student's report log
// when the teacher accepts the document.
func (d *Document) ReportContent() string {
	if d.Category == CategoryDiagnosticTest {
		return d.Summary
	}
	return d.Text
}
