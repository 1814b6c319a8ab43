package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"escape-planner/internal/shared/metrics"
	"escape-planner/internal/shared/telemetry"
	"escape-planner/internal/shared/util"
)

// Notifier fans a lead out to every target. Each target runs in its own goroutine behind
// its own recover, so one failure never affects another. There is no retry and no queue.
type Notifier struct {
	Targets  []Target
	Attempts AttemptRepo
	// Timeout bounds each target call; zero uses the default.
	Timeout time.Duration
	Now     func() time.Time
}

// Notify calls every configured target and returns once all have finished.
func (n *Notifier) Notify(ctx context.Context, lead Lead) Result {
	if n == nil || len(n.Targets) == 0 {
		return Result{Outcomes: map[string]Outcome{}}
	}
	result := Result{Outcomes: make(map[string]Outcome, len(n.Targets))}

	outcomes := make([]Outcome, len(n.Targets))
	var g errgroup.Group
	for i, target := range n.Targets {
		i, target := i, target
		if target == nil || !target.Configured() {
			name := ""
			if target != nil {
				name = target.Name()
			}
			outcomes[i] = Outcome{Target: name, Status: StatusSkipped}
			continue
		}
		g.Go(func() error {
			outcomes[i] = n.send(ctx, target, lead)
			return nil
		})
	}
	_ = g.Wait()

	contactHash := util.HashContact(lead.Email)
	for _, o := range outcomes {
		if o.Target == "" {
			continue
		}
		result.Outcomes[o.Target] = o
		n.observe(ctx, lead, contactHash, o)
	}
	return result
}

func (n *Notifier) send(ctx context.Context, target Target, lead Lead) (out Outcome) {
	out = Outcome{Target: target.Name(), Status: StatusFailed}
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if rec := recover(); rec != nil {
			out.Status = StatusFailed
			out.Error = fmt.Sprintf("panic: %v", rec)
		}
	}()

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = defaultTargetTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	code, err := target.Send(callCtx, lead)
	out.StatusCode = code
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Status = StatusOK
	return out
}

func (n *Notifier) observe(ctx context.Context, lead Lead, contactHash string, o Outcome) {
	metrics.IncNotify(o.Target, string(o.Status))
	fields := map[string]any{
		"target":        o.Target,
		"status":        string(o.Status),
		"status_code":   o.StatusCode,
		"session_id":    lead.SessionID,
		"submission_id": lead.SubmissionID,
		"contact_hash":  contactHash,
		"duration_ms":   o.Duration.Milliseconds(),
	}
	switch o.Status {
	case StatusFailed:
		fields["error"] = o.Error
		telemetry.Warn("notify.failed", fields)
	case StatusOK:
		telemetry.Info("notify.ok", fields)
	default:
		telemetry.Debug("notify.skipped", fields)
	}
	if o.Status == StatusSkipped || n.Attempts == nil {
		return
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	attempt := Attempt{
		ID:           uuid.NewString(),
		SessionID:    lead.SessionID,
		SubmissionID: lead.SubmissionID,
		Target:       o.Target,
		Status:       string(o.Status),
		StatusCode:   o.StatusCode,
		Error:        o.Error,
		ContactHash:  contactHash,
		DurationMs:   o.Duration.Milliseconds(),
		CreatedAt:    now().UTC(),
	}
	if err := n.Attempts.Record(context.WithoutCancel(ctx), attempt); err != nil {
		telemetry.Error("notify.record_failed", map[string]any{"target": o.Target, "error": err.Error()})
	}
}
