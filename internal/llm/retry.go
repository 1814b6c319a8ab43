package llm

import (
	"context"
	"time"

	"escape-planner/internal/shared/telemetry"
)

// DefaultRetryDelay is the pause before retrying a failed transport call.
const DefaultRetryDelay = 300 * time.Millisecond

type retryingClient struct {
	base       Client
	maxRetries int
	delay      time.Duration
}

// WithRetry wraps base so NetworkFailure errors are retried up to maxRetries times.
// Upstream and malformed responses are returned as-is.
func WithRetry(base Client, maxRetries int, delay time.Duration) Client {
	if base == nil || maxRetries <= 0 {
		return base
	}
	if delay < 0 {
		delay = 0
	}
	return retryingClient{base: base, maxRetries: maxRetries, delay: delay}
}

func (r retryingClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := r.base.Complete(ctx, req)
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if err == nil || !shouldRetry(ctx, err) {
			return resp, err
		}
		telemetry.Warn("llm.retry", TraceFrom(ctx).Fields(map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		}))
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return Response{}, err
		}
		resp, err = r.base.Complete(ctx, req)
	}
	return resp, err
}

func shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return KindOf(err) == NetworkFailure
}
