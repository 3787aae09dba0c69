package llm

import (
	"context"

	"github.com/rs/zerolog"
)

// UsageRecorder credits token consumption to a student's cumulative counters.
type UsageRecorder interface {
	AddTokenUsage(ctx context.Context, studentID int64, promptTokens, completionTokens int) error
}

// UsageProvider is a decorator that forwards response token counts to the
// student's counters when a student rides on the context. Usage recording is
// accounting, not correctness: a recording failure is logged and the
// generation result is returned unchanged.
type UsageProvider struct {
	inner    Provider
	recorder UsageRecorder
	log      zerolog.Logger
}

// WithUsageRecording wraps a Provider with best-effort usage metering.
func WithUsageRecording(p Provider, recorder UsageRecorder, log zerolog.Logger) Provider {
	return &UsageProvider{inner: p, recorder: recorder, log: log}
}

func (u *UsageProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := u.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	studentID := StudentFrom(ctx)
	if studentID != 0 && resp.Usage.TotalTokens > 0 {
		if recErr := u.recorder.AddTokenUsage(ctx, studentID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); recErr != nil {
			u.log.Warn().
				Err(recErr).
				Int64("student_id", studentID).
				Str("purpose", PurposeFrom(ctx)).
				Msg("failed to record token usage")
		}
	}

	return resp, nil
}

func (u *UsageProvider) ModelID() string {
	return u.inner.ModelID()
}
