package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"escape-planner/internal/llm"
	"escape-planner/internal/shared/telemetry"
	"escape-planner/internal/shared/util"
)

const (
	// DefaultEndpoint is the Groq OpenAI-compatible chat-completions endpoint.
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	defaultTimeout  = 120 * time.Second
	maxDetailLength = 300
)

// responseSchema is the minimum shape a usable completion must have.
const responseSchema = `{
  "type": "object",
  "required": ["choices"],
  "properties": {
    "choices": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["message"],
        "properties": {
          "message": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string"}}
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema(responseSchema)

// Options configures a chat-completions client.
type Options struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature *float64 // applied when a request leaves Temperature nil
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client implements llm.Client against any OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature *float64
	httpClient  *http.Client
}

// NewClient constructs a new chat-completions client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("GENERATION_MODEL is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("GENERATION_API_KEY is required")
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:    endpoint,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		httpClient:  httpClient,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete issues one chat-completions round trip.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}
	if reqBody.Temperature == nil {
		reqBody.Temperature = c.temperature
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Response{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return llm.Response{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		detail := "request failed"
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			detail = "request timeout"
		}
		return llm.Response{}, &llm.GenerationError{Kind: llm.NetworkFailure, Detail: detail, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Response{}, &llm.GenerationError{Kind: llm.NetworkFailure, StatusCode: resp.StatusCode, Detail: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return llm.Response{}, &llm.GenerationError{
			Kind:       llm.UpstreamError,
			StatusCode: resp.StatusCode,
			Detail:     upstreamDetail(body),
		}
	}

	if err := validateShape(body); err != nil {
		return llm.Response{}, &llm.GenerationError{Kind: llm.MalformedResponse, StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Response{}, &llm.GenerationError{Kind: llm.MalformedResponse, StatusCode: resp.StatusCode, Detail: "decode response", Err: err}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return llm.Response{}, &llm.GenerationError{Kind: llm.MalformedResponse, StatusCode: resp.StatusCode, Detail: "empty content"}
	}

	out := llm.Response{Content: content, Model: parsed.Model}
	if out.Model == "" {
		out.Model = c.model
	}
	if parsed.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}
	logUsage(ctx, out)
	return out, nil
}

func validateShape(body []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("unexpected response shape: %s", strings.Join(errs, "; "))
	}
	return nil
}

func upstreamDetail(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		if env.Error.Type != "" {
			return truncate(env.Error.Message+" ("+env.Error.Type+")", maxDetailLength)
		}
		return truncate(env.Error.Message, maxDetailLength)
	}
	return truncate(strings.TrimSpace(string(body)), maxDetailLength)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return util.Truncate(s, n) + "..."
}

func logUsage(ctx context.Context, resp llm.Response) {
	fields := llm.TraceFrom(ctx).Fields(map[string]any{
		"model": resp.Model,
		"chars": len(resp.Content),
	})
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile chat response schema: %v", err))
	}
	return schema
}

var _ llm.Client = (*Client)(nil)
