package llm

import "context"

// Trace identifies the request and session a generation call belongs to.
type Trace struct {
	RequestID string
	SessionID string
}

type traceKey struct{}

// WithTrace attaches t to ctx. An empty trace leaves ctx unchanged.
func WithTrace(ctx context.Context, t Trace) context.Context {
	if t == (Trace{}) {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the trace attached by WithTrace, or the zero Trace.
func TraceFrom(ctx context.Context) Trace {
	if ctx == nil {
		return Trace{}
	}
	t, _ := ctx.Value(traceKey{}).(Trace)
	return t
}

// Fields adds the non-empty ids to log fields and returns them.
func (t Trace) Fields(fields map[string]any) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 2)
	}
	if t.RequestID != "" {
		fields["request_id"] = t.RequestID
	}
	if t.SessionID != "" {
		fields["session_id"] = t.SessionID
	}
	return fields
}

// Detach keeps ctx's values, the trace included, but drops its deadline and cancellation,
// for work that must finish after the request returns.
func Detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
