package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type recorderCall struct {
	studentID  int64
	prompt     int
	completion int
}

type fakeRecorder struct {
	calls []recorderCall
	err   error
}

func (f *fakeRecorder) AddTokenUsage(_ context.Context, studentID int64, promptTokens, completionTokens int) error {
	f.calls = append(f.calls, recorderCall{studentID, promptTokens, completionTokens})
	return f.err
}

func TestUsage_RecordsWhenStudentAttached(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: "homework text",
		Usage:   Usage{PromptTokens: 120, CompletionTokens: 340, TotalTokens: 460},
	})
	rec := &fakeRecorder{}
	p := WithUsageRecording(mock, rec, zerolog.Nop())

	ctx := WithStudent(context.Background(), 42)
	resp, err := p.Generate(ctx, Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "homework text" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 recorder call, got %d", len(rec.calls))
	}
	call := rec.calls[0]
	if call.studentID != 42 || call.prompt != 120 || call.completion != 340 {
		t.Fatalf("unexpected recorder call: %+v", call)
	}
}

func TestUsage_SkippedWithoutStudent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: "chat reply",
		Usage:   Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	})
	rec := &fakeRecorder{}
	p := WithUsageRecording(mock, rec, zerolog.Nop())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no recorder calls, got %d", len(rec.calls))
	}
}

func TestUsage_RecorderFailureDoesNotFailGeneration(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: "plan text",
		Usage:   Usage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12},
	})
	rec := &fakeRecorder{err: errors.New("db down")}
	p := WithUsageRecording(mock, rec, zerolog.Nop())

	ctx := WithStudent(context.Background(), 7)
	resp, err := p.Generate(ctx, Request{})
	if err != nil {
		t.Fatalf("generation must not fail on recording error, got: %v", err)
	}
	if resp.Content != "plan text" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func TestUsage_GenerationErrorPassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Err: &ErrProviderUnavailable{Err: errors.New("down")},
	})
	rec := &fakeRecorder{}
	p := WithUsageRecording(mock, rec, zerolog.Nop())

	ctx := WithStudent(context.Background(), 7)
	_, err := p.Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no recorder calls on failure, got %d", len(rec.calls))
	}
}
