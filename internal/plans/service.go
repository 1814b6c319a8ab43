package plans

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"escape-planner/internal/llm"
	"escape-planner/internal/notify"
	"escape-planner/internal/shared/metrics"
	"escape-planner/internal/shared/telemetry"
)

// staleAfter releases sessions stuck in a busy state, e.g. after a crash mid-request.
const staleAfter = 10 * time.Minute

// PlanGenerator produces a plan for a complete submission.
type PlanGenerator interface {
	Generate(ctx context.Context, in SubmissionInput) (GeneratedPlan, error)
}

// DocumentExporter renders a plan into a downloadable document.
type DocumentExporter interface {
	Export(plan GeneratedPlan) (ExportedDocument, error)
}

// LeadNotifier forwards a lead to the configured targets.
type LeadNotifier interface {
	Notify(ctx context.Context, lead notify.Lead) notify.Result
}

// ExportOutcome is what an export hands back to the caller.
type ExportOutcome struct {
	Document ExportedDocument
	Session  Session
	// NotifyDispatched is false when no notifier is configured.
	NotifyDispatched bool
	// Notify is set only when notification ran synchronously.
	Notify *notify.Result
}

// Service runs the submission pipeline for one session at a time.
type Service struct {
	Sessions  SessionStore
	Generator PlanGenerator
	Exporter  DocumentExporter
	Notifier  LeadNotifier
	// SyncNotify runs notification inline instead of in the background.
	SyncNotify bool
	Now        func() time.Time

	wg    sync.WaitGroup
	locks sessionLocks
}

// Current returns the session, or ErrSessionNotFound.
func (s *Service) Current(ctx context.Context, sessionID string) (Session, error) {
	return s.Sessions.Get(ctx, sessionID)
}

// Submit collects the form and, when complete, generates a plan. Each call starts a new
// submission; the previous plan is discarded. Generation is not cancelled if the caller
// goes away. A session already working on another request rejects the call with ErrSessionBusy.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form) (Session, error) {
	release, err := s.claim(ctx, sessionID, false)
	if err != nil {
		return Session{}, err
	}
	defer release()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.State != StateAwaitingInput {
		if err := s.move(&sess, StateAwaitingInput); err != nil {
			return sess, err
		}
	}
	sess.SubmissionID = uuid.NewString()
	sess.Input = nil
	sess.Plan = nil
	sess.FailureKind = ""
	sess.NotifyID = ""
	sess.Notify = nil

	input, err := Collect(form)
	if err != nil {
		if saveErr := s.save(ctx, &sess); saveErr != nil {
			return sess, saveErr
		}
		return sess, err
	}
	sess.Input = &input
	if err := s.move(&sess, StateGenerating); err != nil {
		return sess, err
	}
	if err := s.save(ctx, &sess); err != nil {
		return sess, err
	}

	genCtx := context.WithoutCancel(ctx)
	plan, genErr := s.generator().Generate(genCtx, input)
	if genErr != nil {
		sess.FailureKind = failureKind(genErr)
		if err := s.move(&sess, StateGenerationFailed); err != nil {
			return sess, err
		}
		if err := s.save(genCtx, &sess); err != nil {
			return sess, err
		}
		return sess, genErr
	}

	sess.Plan = &plan
	if err := s.move(&sess, StatePlanReady); err != nil {
		return sess, err
	}
	if err := s.save(genCtx, &sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Export renders the session's plan and dispatches notification. An invalid contact is
// rejected before any outbound call. Notification never delays or fails the document.
func (s *Service) Export(ctx context.Context, sessionID string, in ContactInput) (ExportOutcome, error) {
	contact, err := notify.ParseContact(in.Email, in.Name)
	if err != nil {
		return ExportOutcome{}, err
	}
	release, err := s.claim(ctx, sessionID, false)
	if err != nil {
		return ExportOutcome{}, err
	}
	defer release()

	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ExportOutcome{}, ErrPlanRequired
		}
		return ExportOutcome{}, err
	}
	s.releaseStale(&sess)
	if !sess.HasPlan() {
		return ExportOutcome{Session: sess}, ErrPlanRequired
	}
	if err := s.move(&sess, StateExporting); err != nil {
		return ExportOutcome{Session: sess}, err
	}
	if err := s.save(ctx, &sess); err != nil {
		return ExportOutcome{Session: sess}, err
	}

	doc, exportErr := s.Exporter.Export(*sess.Plan)
	if exportErr != nil {
		metrics.IncExport(exportOutcome(exportErr))
		_ = s.move(&sess, StatePlanReady)
		if err := s.save(ctx, &sess); err != nil {
			return ExportOutcome{Session: sess}, err
		}
		return ExportOutcome{Session: sess}, exportErr
	}
	metrics.IncExport(metrics.OutcomeOK)
	metrics.AddReplacedGlyphs(doc.Replaced)

	if err := s.move(&sess, StateExported); err != nil {
		return ExportOutcome{Session: sess}, err
	}
	out := ExportOutcome{Document: doc}
	if s.Notifier == nil {
		if err := s.save(ctx, &sess); err != nil {
			return out, err
		}
		out.Session = sess
		return out, nil
	}

	if err := s.move(&sess, StateNotifying); err != nil {
		return out, err
	}
	sess.NotifyID = uuid.NewString()
	if err := s.save(ctx, &sess); err != nil {
		return out, err
	}
	out.Session = sess
	out.NotifyDispatched = true

	lead := s.lead(sess, contact)
	if s.SyncNotify {
		res := s.Notifier.Notify(ctx, lead)
		s.recordNotify(ctx, sess.ID, sess.NotifyID, res)
		out.Notify = &res
		return out, nil
	}

	bg := llm.Detach(ctx)
	notifyID := sess.NotifyID
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("notify.panic", map[string]any{"session_id": lead.SessionID, "error": fmt.Sprint(rec)})
			}
		}()
		res := s.Notifier.Notify(bg, lead)
		s.finishNotify(bg, lead.SessionID, notifyID, res)
	}()
	return out, nil
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// finishNotify records a background result once the session is free again.
func (s *Service) finishNotify(ctx context.Context, sessionID, notifyID string, res notify.Result) {
	release, err := s.claim(ctx, sessionID, true)
	if err != nil {
		telemetry.Warn("notify.result_dropped", map[string]any{"session_id": sessionID, "error": err.Error()})
		return
	}
	defer release()
	s.recordNotify(ctx, sessionID, notifyID, res)
}

// recordNotify expects the caller to hold the session.
func (s *Service) recordNotify(ctx context.Context, sessionID, notifyID string, res notify.Result) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		telemetry.Warn("notify.session_gone", map[string]any{"session_id": sessionID, "error": err.Error()})
		return
	}
	if sess.NotifyID != notifyID || sess.State != StateNotifying {
		return
	}
	if err := s.move(&sess, StateNotified); err != nil {
		return
	}
	sess.Notify = &NotifySummary{
		MailingList: string(res.MailingList().Status),
		Spreadsheet: string(res.Spreadsheet().Status),
		CompletedAt: s.now(),
	}
	if err := s.save(ctx, &sess); err != nil {
		telemetry.Error("notify.session_save_failed", map[string]any{"session_id": sessionID, "error": err.Error()})
	}
}

func (s *Service) lead(sess Session, contact notify.Contact) notify.Lead {
	lead := notify.Lead{
		Contact:      contact,
		SessionID:    sess.ID,
		SubmissionID: sess.SubmissionID,
		PlanText:     sess.Plan.Text,
		SubmittedAt:  s.now(),
	}
	if sess.Input != nil {
		lead.Details = notify.LeadDetails{
			JobTitle:   sess.Input.JobTitle,
			Skills:     sess.Input.Skills,
			Savings:    sess.Input.Savings,
			Goal:       sess.Input.Goal,
			HustlePath: sess.Input.HustlePath(),
		}
	}
	return lead
}

func (s *Service) load(ctx context.Context, sessionID string) (Session, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		sess = Session{ID: sessionID, State: StateIdle}
	} else if err != nil {
		return Session{}, err
	}
	s.releaseStale(&sess)
	if sess.State.Busy() {
		return sess, &TransitionError{From: sess.State, To: StateAwaitingInput}
	}
	return sess, nil
}

func (s *Service) releaseStale(sess *Session) {
	if !sess.State.Busy() || s.now().Sub(sess.UpdatedAt) < staleAfter {
		return
	}
	prev := sess.State
	if sess.HasPlan() {
		sess.State = StatePlanReady
	} else {
		sess.State = StateAwaitingInput
	}
	telemetry.Warn("plan.session_released", map[string]any{"session_id": sess.ID, "from": string(prev), "to": string(sess.State)})
}

func (s *Service) move(sess *Session, to State) error {
	from := sess.State
	if err := sess.Transition(to); err != nil {
		return err
	}
	telemetry.Debug("plan.state", map[string]any{
		"session_id":    sess.ID,
		"submission_id": sess.SubmissionID,
		"from":          string(from),
		"to":            string(to),
	})
	return nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	if err := s.Sessions.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Service) generator() PlanGenerator {
	if s.Generator == nil {
		return (*Generator)(nil)
	}
	return s.Generator
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func failureKind(err error) string {
	if kind := llm.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, ErrGenerationDisabled) {
		return "disabled"
	}
	return "unknown"
}

func exportOutcome(err error) string {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return string(exportErr.Kind)
	}
	return metrics.OutcomeFailed
}
