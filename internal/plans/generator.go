package plans

import (
	"context"
	"errors"
	"strings"
	"time"

	"escape-planner/internal/llm"
	"escape-planner/internal/shared/metrics"
	"escape-planner/internal/shared/telemetry"
)

// Generator turns a submission into a plan with one chat-completion call.
type Generator struct {
	Client       llm.Client
	SystemPrompt string
	Now          func() time.Time
}

// Generate renders the prompt and returns the first generated message. Failures are
// *llm.GenerationError; a partial plan is never returned.
func (g *Generator) Generate(ctx context.Context, in SubmissionInput) (GeneratedPlan, error) {
	if g == nil || g.Client == nil {
		return GeneratedPlan{}, ErrGenerationDisabled
	}
	messages := make([]llm.Message, 0, 2)
	if sys := strings.TrimSpace(g.SystemPrompt); sys != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: sys})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: BuildPrompt(in)})

	start := time.Now()
	resp, err := g.Client.Complete(ctx, llm.Request{Messages: messages})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			metrics.ObserveGeneration("disabled", elapsed)
			return GeneratedPlan{}, ErrGenerationDisabled
		}
		var genErr *llm.GenerationError
		if !errors.As(err, &genErr) {
			genErr = &llm.GenerationError{Kind: llm.NetworkFailure, Detail: "request failed", Err: err}
		}
		metrics.ObserveGeneration(string(genErr.Kind), elapsed)
		telemetry.Warn("plan.generation_failed", llm.TraceFrom(ctx).Fields(map[string]any{
			"kind":        string(genErr.Kind),
			"status_code": genErr.StatusCode,
			"detail":      genErr.Detail,
			"duration_ms": elapsed.Milliseconds(),
		}))
		return GeneratedPlan{}, genErr
	}
	if strings.TrimSpace(resp.Content) == "" {
		metrics.ObserveGeneration(string(llm.MalformedResponse), elapsed)
		return GeneratedPlan{}, &llm.GenerationError{Kind: llm.MalformedResponse, Detail: "empty content"}
	}

	metrics.ObserveGeneration(metrics.OutcomeOK, elapsed)
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return GeneratedPlan{
		Text:        resp.Content,
		Model:       resp.Model,
		GeneratedAt: now().UTC(),
	}, nil
}
