package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/docgen"
	"github.com/abhisek/tutordesk/internal/drive"
	"github.com/abhisek/tutordesk/internal/store"
)

type fakeGenerator struct {
	calls []docgen.GenerateInput
	next  int
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, input docgen.GenerateInput) (*docgen.Document, error) {
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	return &docgen.Document{
		Category: input.Category,
		Format:   input.Format,
		Text:     fmt.Sprintf("draft %d", f.next),
	}, nil
}

type fakeReporter struct {
	appends []string
	err     error
}

func (f *fakeReporter) AppendSection(_ context.Context, _ *store.Teacher, _ *store.Student, label, content string) error {
	if f.err != nil {
		return f.err
	}
	f.appends = append(f.appends, label+": "+content)
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, doc *docgen.Document) ([]byte, error) {
	return []byte("%PDF " + doc.Text), nil
}

func wfTeacher() *store.Teacher {
	return &store.Teacher{ID: 1, Name: "Anna", Surname: "Ivanova", Language: "en", DriveToken: "tok"}
}

func wfStudent() *store.Student {
	return &store.Student{ID: 7, TeacherID: 1, Name: "Ivan", Surname: "Petrov"}
}

func newTestWorkflow() (*Workflow, *fakeGenerator, *fakeReporter, *drive.MemStore) {
	gen := &fakeGenerator{}
	rep := &fakeReporter{}
	storage := drive.NewMemStore()
	w := New(gen, rep, fakeRenderer{}, storage, zerolog.Nop())
	return w, gen, rep, storage
}

func TestStartProducesDraft(t *testing.T) {
	w, _, rep, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()

	draft, err := w.Start(context.Background(), teacher, student, docgen.CategoryHomework, "fractions", docgen.FormatText)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if draft.Document.Text != "draft 1" {
		t.Errorf("Text = %q", draft.Document.Text)
	}
	if got := w.StateOf(teacher, student, docgen.CategoryHomework); got != StateDrafted {
		t.Errorf("state = %v, want StateDrafted", got)
	}
	if len(rep.appends) != 0 {
		t.Errorf("draft committed without accept: %v", rep.appends)
	}
}

func TestStartReplacesPendingDraft(t *testing.T) {
	w, _, rep, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(rep.appends) != 1 {
		t.Fatalf("appends = %d, want 1", len(rep.appends))
	}
	if !strings.Contains(rep.appends[0], "draft 2") {
		t.Errorf("stale draft committed: %q", rep.appends[0])
	}
}

func TestReviseLoopAppendsExactlyOnce(t *testing.T) {
	w, gen, rep, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := w.Revise(teacher, student, docgen.CategoryHomework); err != nil {
			t.Fatalf("Revise: %v", err)
		}
		if got := w.StateOf(teacher, student, docgen.CategoryHomework); got != StateAwaitingFeedback {
			t.Fatalf("state = %v, want StateAwaitingFeedback", got)
		}
		if _, err := w.Feedback(ctx, teacher, student, docgen.CategoryHomework, "harder please"); err != nil {
			t.Fatalf("Feedback: %v", err)
		}
	}

	if _, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if len(rep.appends) != 1 {
		t.Fatalf("appends = %d, want exactly 1 after 3 revisions", len(rep.appends))
	}
	// 1 initial generation + 3 feedback regenerations, zero extra appends.
	if len(gen.calls) != 4 {
		t.Errorf("generator calls = %d, want 4", len(gen.calls))
	}
	// Final accepted text is the last regeneration.
	if !strings.Contains(rep.appends[0], "draft 4") {
		t.Errorf("wrong draft committed: %q", rep.appends[0])
	}
}

func TestFeedbackCarriesPreviousDraft(t *testing.T) {
	w, gen, _, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Revise(teacher, student, docgen.CategoryHomework); err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if _, err := w.Feedback(ctx, teacher, student, docgen.CategoryHomework, "shorter"); err != nil {
		t.Fatalf("Feedback: %v", err)
	}

	last := gen.calls[len(gen.calls)-1]
	if last.PreviousDraft != "draft 1" {
		t.Errorf("PreviousDraft = %q, want %q", last.PreviousDraft, "draft 1")
	}
	if last.Feedback != "shorter" {
		t.Errorf("Feedback = %q", last.Feedback)
	}
}

func TestFeedbackOutsideReviseRejected(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Feedback(ctx, teacher, student, docgen.CategoryHomework, "text"); !errors.Is(err, ErrNoDraft) {
		t.Errorf("err = %v, want ErrNoDraft", err)
	}

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := w.Feedback(ctx, teacher, student, docgen.CategoryHomework, "text"); !errors.Is(err, ErrNotAwaitingFeedback) {
		t.Errorf("err = %v, want ErrNotAwaitingFeedback", err)
	}
}

func TestAcceptUploadsNumberedDocument(t *testing.T) {
	w, _, _, storage := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
			t.Fatalf("Start: %v", err)
		}
		path, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		want := fmt.Sprintf("%02d_homework_", i)
		if !strings.Contains(path, want) {
			t.Errorf("path = %q, want sequence %q", path, want)
		}
		if data, ok, _ := storage.Read(ctx, path); !ok || len(data) == 0 {
			t.Errorf("uploaded document missing at %q", path)
		}
	}
}

func TestAcceptWithoutDraft(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()

	if _, err := w.Accept(context.Background(), teacher, student, docgen.CategoryHomework); !errors.Is(err, ErrNoDraft) {
		t.Errorf("err = %v, want ErrNoDraft", err)
	}
}

func TestFailedAppendKeepsDraft(t *testing.T) {
	w, _, rep, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rep.err = errors.New("drive down")
	if _, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework); err == nil {
		t.Fatal("expected accept failure")
	}
	if got := w.StateOf(teacher, student, docgen.CategoryHomework); got != StateDrafted {
		t.Fatalf("state = %v, want StateDrafted after failed append", got)
	}

	// Retry succeeds with the same draft.
	rep.err = nil
	if _, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework); err != nil {
		t.Fatalf("retry Accept: %v", err)
	}
	if len(rep.appends) != 1 {
		t.Errorf("appends = %d, want 1", len(rep.appends))
	}
}

func TestAbandonDropsDraft(t *testing.T) {
	w, _, rep, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Abandon(teacher, student, docgen.CategoryHomework)

	if got := w.StateOf(teacher, student, docgen.CategoryHomework); got != StateIdle {
		t.Errorf("state = %v, want StateIdle", got)
	}
	if _, err := w.Accept(ctx, teacher, student, docgen.CategoryHomework); !errors.Is(err, ErrNoDraft) {
		t.Errorf("err = %v, want ErrNoDraft", err)
	}
	if len(rep.appends) != 0 {
		t.Errorf("abandoned draft committed: %v", rep.appends)
	}
}

func TestConversationsAreIndependent(t *testing.T) {
	w, _, _, _ := newTestWorkflow()
	teacher, student := wfTeacher(), wfStudent()
	other := &store.Student{ID: 8, TeacherID: 1, Name: "Olga", Surname: "Sidorova"}
	ctx := context.Background()

	if _, err := w.Start(ctx, teacher, student, docgen.CategoryHomework, "", docgen.FormatText); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := w.StateOf(teacher, other, docgen.CategoryHomework); got != StateIdle {
		t.Errorf("other student state = %v, want StateIdle", got)
	}
	if got := w.StateOf(teacher, student, docgen.CategoryPlan); got != StateIdle {
		t.Errorf("other category state = %v, want StateIdle", got)
	}
}
