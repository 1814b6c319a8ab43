package llm

import (
	"context"
	"errors"
)

// Message roles understood by chat-completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat-completion call.
type Request struct {
	Messages    []Message
	Temperature *float64 // nil leaves the provider default
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the first generated message of a completion.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
}

// Client abstracts chat-completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrNotConfigured is returned by the placeholder client when no provider key is set.
var ErrNotConfigured = errors.New("text generation is not configured")

// PlaceholderClient stands in when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (Response, error) {
	_ = ctx
	_ = req
	return Response{}, ErrNotConfigured
}
