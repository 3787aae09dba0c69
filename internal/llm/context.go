package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	studentKey contextKey = "llm_student"
)

// WithPurpose attaches a purpose label to the context for usage recording.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithStudent attaches the student the generation is for, so the usage
// decorator can credit token counts to the right cumulative counters.
func WithStudent(ctx context.Context, studentID int64) context.Context {
	return context.WithValue(ctx, studentKey, studentID)
}

// StudentFrom extracts the student ID, or 0 when no student is attached.
func StudentFrom(ctx context.Context) int64 {
	if v, ok := ctx.Value(studentKey).(int64); ok {
		return v
	}
	return 0
}
