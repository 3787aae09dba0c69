package docgen

import "github.com/abhisek/tutordesk/internal/llm"

// DiagnosticSchema defines the structured output for diagnostic tests: the
// test itself, a paired answer key, and a short summary for the report log.
var DiagnosticSchema = &llm.Schema{
	Name:        "diagnostic-test",
	Description: "A diagnostic test with its answer key and a short report-log summary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"test": map[string]any{
				"type":        "string",
				"description": "The full test text shown to the student, questions only",
			},
			"answer_key": map[string]any{
				"type":        "string",
				"description": "The answer key paired with the test, for the teacher only",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences describing what the test covers, for the lesson log",
			},
		},
		"required":             []any{"test", "answer_key", "summary"},
		"additionalProperties": false,
	},
}
