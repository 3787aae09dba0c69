package llm

import (
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "diagnostic-test-check",
	Description: "test schema",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"test":       map[string]any{"type": "string"},
			"answer_key": map[string]any{"type": "string"},
		},
		"required":             []any{"test", "answer_key"},
		"additionalProperties": false,
	},
}

func TestValidateResponse_Valid(t *testing.T) {
	content := `{"test": "1. Solve x+2=5", "answer_key": "1. x=3"}`
	if err := validateResponse(testSchema, content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_NotJSON(t *testing.T) {
	err := validateResponse(testSchema, "plain text, not json")
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	err := validateResponse(testSchema, `{"test": "questions only"}`)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, "anything goes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
