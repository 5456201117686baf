package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures for callers.
type Kind string

const (
	KindInvalidInput            Kind = "invalid_input"
	KindResumeRejected          Kind = "resume_rejected"
	KindGenerationUnprocessable Kind = "generation_unprocessable"
	KindInternal                Kind = "internal"
)

const internalMessage = "Internal error while assessing the candidate."

// Error is returned by Run for every failure. Message is safe to show to the
// client; Cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func invalidInput(message string, cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Cause: cause}
}

func internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, Cause: cause}
}

// KindOf returns the kind of a pipeline error. Errors that did not originate
// from the pipeline are internal; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// AsError converts any error into a pipeline error.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return internal(err)
}
