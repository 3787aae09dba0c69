// Package workflow owns the generate-confirm-revise conversation: every
// document goes teacher-visible first, and only an explicit accept commits
// it to the report log and the drive.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/tutordesk/internal/docgen"
	"github.com/abhisek/tutordesk/internal/drive"
	"github.com/abhisek/tutordesk/internal/store"
)

// State is the conversation state for one (teacher, student, category).
type State int

const (
	// StateIdle: no pending draft.
	StateIdle State = iota
	// StateDrafted: a draft awaits accept or revise.
	StateDrafted
	// StateAwaitingFeedback: the teacher chose revise; the next text
	// message is the feedback.
	StateAwaitingFeedback
)

var (
	// ErrNoDraft is returned when accept, revise or feedback arrives with
	// no pending draft.
	ErrNoDraft = errors.New("no pending draft")

	// ErrNotAwaitingFeedback is returned when feedback arrives outside
	// the revise flow.
	ErrNotAwaitingFeedback = errors.New("not awaiting feedback")
)

// Draft is one generated document awaiting confirmation. Ephemeral: it
// lives in memory until accepted, replaced or abandoned.
type Draft struct {
	ID        string
	TeacherID int64
	StudentID int64
	Category  docgen.Category
	Document  *docgen.Document
	CreatedAt time.Time
}

// Generator produces documents.
type Generator interface {
	Generate(ctx context.Context, input docgen.GenerateInput) (*docgen.Document, error)
}

// Reporter appends accepted content to the student's report log.
type Reporter interface {
	AppendSection(ctx context.Context, teacher *store.Teacher, student *store.Student, label, content string) error
}

// Renderer turns a document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, doc *docgen.Document) ([]byte, error)
}

type convKey struct {
	teacherID int64
	studentID int64
	category  docgen.Category
}

type conversation struct {
	state State
	draft *Draft
}

// Workflow drives the confirmation state machine.
type Workflow struct {
	generator Generator
	reporter  Reporter
	renderer  Renderer
	storage   drive.Store
	log       zerolog.Logger

	mu    sync.Mutex
	convs map[convKey]*conversation

	now func() time.Time
}

// New creates a Workflow.
func New(generator Generator, reporter Reporter, renderer Renderer, storage drive.Store, log zerolog.Logger) *Workflow {
	return &Workflow{
		generator: generator,
		reporter:  reporter,
		renderer:  renderer,
		storage:   storage,
		log:       log,
		convs:     make(map[convKey]*conversation),
		now:       time.Now,
	}
}

// StateOf returns the current conversation state.
func (w *Workflow) StateOf(teacher *store.Teacher, student *store.Student, category docgen.Category) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.convs[convKey{teacher.ID, student.ID, category}]; ok {
		return c.state
	}
	return StateIdle
}

// Start generates a fresh draft. A pending draft of the same conversation
// is replaced, never committed.
func (w *Workflow) Start(ctx context.Context, teacher *store.Teacher, student *store.Student, category docgen.Category, topic string, format docgen.Format) (*Draft, error) {
	doc, err := w.generator.Generate(ctx, docgen.GenerateInput{
		Teacher:  teacher,
		Student:  student,
		Category: category,
		Format:   format,
		Topic:    topic,
	})
	if err != nil {
		return nil, err
	}

	draft := w.newDraft(teacher, student, category, doc)
	w.setConversation(draft, StateDrafted)
	return draft, nil
}

// Revise moves a drafted conversation to awaiting feedback.
func (w *Workflow) Revise(teacher *store.Teacher, student *store.Student, category docgen.Category) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.convs[convKey{teacher.ID, student.ID, category}]
	if !ok || c.draft == nil {
		return ErrNoDraft
	}
	c.state = StateAwaitingFeedback
	return nil
}

// Feedback regenerates the draft with the teacher's corrections applied.
// The old draft is discarded; nothing is appended to the report.
func (w *Workflow) Feedback(ctx context.Context, teacher *store.Teacher, student *store.Student, category docgen.Category, feedback string) (*Draft, error) {
	w.mu.Lock()
	c, ok := w.convs[convKey{teacher.ID, student.ID, category}]
	if !ok || c.draft == nil {
		w.mu.Unlock()
		return nil, ErrNoDraft
	}
	if c.state != StateAwaitingFeedback {
		w.mu.Unlock()
		return nil, ErrNotAwaitingFeedback
	}
	previous := c.draft.Document
	w.mu.Unlock()

	doc, err := w.generator.Generate(ctx, docgen.GenerateInput{
		Teacher:       teacher,
		Student:       student,
		Category:      category,
		Format:        previous.Format,
		PreviousDraft: previous.Text,
		Feedback:      feedback,
	})
	if err != nil {
		return nil, err
	}

	draft := w.newDraft(teacher, student, category, doc)
	w.setConversation(draft, StateDrafted)
	return draft, nil
}

// Accept finalizes the pending draft: append to the report log, render and
// upload the PDF, return to idle. The append is exactly-once — a failed
// append restores the draft for retry, while a failed upload after a
// successful append is reported without reviving the draft (the content is
// already committed to the report).
func (w *Workflow) Accept(ctx context.Context, teacher *store.Teacher, student *store.Student, category docgen.Category) (string, error) {
	draft, err := w.takeDraft(teacher.ID, student.ID, category)
	if err != nil {
		return "", err
	}

	label := category.Label(teacher.Language)
	if err := w.reporter.AppendSection(ctx, teacher, student, label, draft.Document.ReportContent()); err != nil {
		w.restoreDraft(draft)
		return "", fmt.Errorf("append to report: %w", err)
	}

	path, err := w.upload(ctx, student, draft)
	if err != nil {
		w.log.Error().Err(err).Str("draft_id", draft.ID).Msg("document upload failed after report append")
		return "", fmt.Errorf("upload document: %w", err)
	}
	return path, nil
}

// Abandon drops any pending draft without committing it.
func (w *Workflow) Abandon(teacher *store.Teacher, student *store.Student, category docgen.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.convs, convKey{teacher.ID, student.ID, category})
}

func (w *Workflow) newDraft(teacher *store.Teacher, student *store.Student, category docgen.Category, doc *docgen.Document) *Draft {
	return &Draft{
		ID:        uuid.NewString(),
		TeacherID: teacher.ID,
		StudentID: student.ID,
		Category:  category,
		Document:  doc,
		CreatedAt: w.now(),
	}
}

func (w *Workflow) setConversation(draft *Draft, state State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.convs[convKey{draft.TeacherID, draft.StudentID, draft.Category}] = &conversation{state: state, draft: draft}
}

// takeDraft pops the pending draft so concurrent accepts cannot both
// finalize it.
func (w *Workflow) takeDraft(teacherID, studentID int64, category docgen.Category) (*Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := convKey{teacherID, studentID, category}
	c, ok := w.convs[key]
	if !ok || c.draft == nil {
		return nil, ErrNoDraft
	}
	draft := c.draft
	delete(w.convs, key)
	return draft, nil
}

func (w *Workflow) restoreDraft(draft *Draft) {
	w.setConversation(draft, StateDrafted)
}

// upload renders the draft and writes it under the student's category
// folder, numbered after the files already there.
func (w *Workflow) upload(ctx context.Context, student *store.Student, draft *Draft) (string, error) {
	pdf, err := w.renderer.Render(ctx, draft.Document)
	if err != nil {
		return "", err
	}

	prefix := drive.CategoryPrefix(student.FolderName(), draft.Category.Dir())
	existing, err := w.storage.List(ctx, prefix)
	if err != nil {
		return "", err
	}

	path := drive.DocumentPath(student.FolderName(), draft.Category.Dir(), draft.Category.String(), len(existing)+1, w.now())
	if err := w.storage.Upload(ctx, path, bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		return "", err
	}
	return path, nil
}
