package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation call.
type ErrorKind string

const (
	// NetworkFailure covers transport errors and timeouts before a response arrived.
	NetworkFailure ErrorKind = "network_failure"
	// UpstreamError covers any non-200 response.
	UpstreamError ErrorKind = "upstream_error"
	// MalformedResponse covers 200 responses without a usable first message.
	MalformedResponse ErrorKind = "malformed_response"
)

// GenerationError is returned for every failed completion.
type GenerationError struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *GenerationError) Error() string {
	msg := string(e.Kind)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KindOf returns the kind of a GenerationError anywhere in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// UserMessage is the plain-language retry prompt shown for a generation failure.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case NetworkFailure:
		return "We couldn't reach the plan generator. Please try again in a moment."
	case UpstreamError:
		return "The plan generator returned an error. Please try again."
	case MalformedResponse:
		return "The plan generator sent back an empty plan. Please try again."
	default:
		return "Something went wrong while generating your plan. Please try again."
	}
}
