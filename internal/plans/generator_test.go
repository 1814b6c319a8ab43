package plans

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"escape-planner/internal/llm"
)

func TestGenerateReturnsFirstMessage(t *testing.T) {
	fixed := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	client := &stubLLM{resp: llm.Response{Content: "Week 1: ...", Model: "mixtral-8x7b-32768"}}
	g := &Generator{Client: client, Now: func() time.Time { return fixed }}

	in, _ := Collect(scenarioForm())
	plan, err := g.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Text != "Week 1: ..." || plan.Model != "mixtral-8x7b-32768" || !plan.GeneratedAt.Equal(fixed) {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected one call")
	}
	msgs := client.requests[0].Messages
	if len(msgs) != 1 || msgs[0].Role != llm.RoleUser {
		t.Fatalf("expected a single user message, got %+v", msgs)
	}
	for _, v := range []string{"Nurse", "4000", "Writing, Teaching", "2000", "Freelance writing"} {
		if !strings.Contains(msgs[0].Content, v) {
			t.Fatalf("prompt missing %q", v)
		}
	}
}

func TestGenerateAddsSystemMessage(t *testing.T) {
	client := &stubLLM{resp: llm.Response{Content: "ok"}}
	g := &Generator{Client: client, SystemPrompt: "You are upbeat."}
	in, _ := Collect(scenarioForm())
	if _, err := g.Generate(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := client.requests[0].Messages
	if len(msgs) != 2 || msgs[0].Role != llm.RoleSystem || msgs[0].Content != "You are upbeat." {
		t.Fatalf("expected system message first, got %+v", msgs)
	}
}

func TestGeneratePassesThroughGenerationError(t *testing.T) {
	client := &stubLLM{err: &llm.GenerationError{Kind: llm.MalformedResponse, Detail: "missing choices"}}
	g := &Generator{Client: client}
	in, _ := Collect(scenarioForm())
	plan, err := g.Generate(context.Background(), in)
	if llm.KindOf(err) != llm.MalformedResponse {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if plan.Text != "" {
		t.Fatalf("expected no partial plan")
	}
}

func TestGenerateWrapsUnknownErrors(t *testing.T) {
	g := &Generator{Client: &stubLLM{err: errors.New("dial tcp: refused")}}
	in, _ := Collect(scenarioForm())
	_, err := g.Generate(context.Background(), in)
	if llm.KindOf(err) != llm.NetworkFailure {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestGenerateDisabled(t *testing.T) {
	in, _ := Collect(scenarioForm())
	var nilGen *Generator
	if _, err := nilGen.Generate(context.Background(), in); !errors.Is(err, ErrGenerationDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
	g := &Generator{Client: llm.PlaceholderClient{}}
	if _, err := g.Generate(context.Background(), in); !errors.Is(err, ErrGenerationDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestGenerateEmptyContentIsMalformed(t *testing.T) {
	g := &Generator{Client: &stubLLM{resp: llm.Response{Content: "  "}}}
	in, _ := Collect(scenarioForm())
	if _, err := g.Generate(context.Background(), in); llm.KindOf(err) != llm.MalformedResponse {
		t.Fatalf("expected malformed, got %v", err)
	}
}
