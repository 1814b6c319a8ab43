package plans

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputIncomplete means at least one required field is blank. No generation happens.
	ErrInputIncomplete = errors.New("input incomplete")
	// ErrInvalidTransition means the session is not in a state that allows the operation.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSessionNotFound is returned by stores for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlanRequired means export was requested before a plan exists.
	ErrPlanRequired = errors.New("plan required")
	// ErrGenerationDisabled means no generation provider is configured.
	ErrGenerationDisabled = errors.New("generation disabled")
	// ErrSessionBusy means another request holds the session.
	ErrSessionBusy = fmt.Errorf("session busy: %w", ErrInvalidTransition)
)

// InputError lists the blank fields of an incomplete submission.
type InputError struct {
	Missing []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrInputIncomplete, strings.Join(e.Missing, ", "))
}

func (e *InputError) Unwrap() error { return ErrInputIncomplete }

// ExportErrorKind classifies a failed export.
type ExportErrorKind string

const (
	// EncodingUnsupported means the text holds characters the document font cannot encode.
	EncodingUnsupported ExportErrorKind = "encoding_unsupported"
	// RenderFailed covers any other document writer failure.
	RenderFailed ExportErrorKind = "render_failed"
)

// ExportError is returned by exporters.
type ExportError struct {
	Kind   ExportErrorKind
	Detail string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Detail == "" {
		return "export " + string(e.Kind)
	}
	return "export " + string(e.Kind) + ": " + e.Detail
}

func (e *ExportError) Unwrap() error { return e.Err }

// TransitionError records the rejected move.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
