package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTargetTimeout = 10 * time.Second

// Target is one best-effort lead destination.
type Target interface {
	Name() string
	// Configured reports whether credentials are present; unconfigured targets are skipped.
	Configured() bool
	// Send returns the observed status code, if any, and an error for any non-success.
	Send(ctx context.Context, lead Lead) (int, error)
}

// StatusError is a non-success HTTP response from a target.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func defaultHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTargetTimeout}
}

// postJSON posts payload and accepts only the listed status codes.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any, accept ...int) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	for _, code := range accept {
		if resp.StatusCode == code {
			return resp.StatusCode, nil
		}
	}
	return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
}
