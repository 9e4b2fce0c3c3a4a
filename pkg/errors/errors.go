package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrExternal indicates an upstream service reported a failure
	ErrExternal = errors.New("external service error")
)

// Routing and workflow errors

var (
	// ErrUnknownAgentKind indicates a step or resolved intent names an
	// agent kind that is not registered
	ErrUnknownAgentKind = errors.New("unknown agent kind")

	// ErrInvalidStepReference indicates a workflow step references a
	// nonexistent or later-indexed step
	ErrInvalidStepReference = errors.New("invalid step reference")

	// ErrWorkflowTerminal indicates an attempt to re-run a workflow that
	// already reached a terminal state. Agent execution failures have no
	// sentinel: they are recorded as failure-flagged step results, not
	// returned as errors.
	ErrWorkflowTerminal = errors.New("workflow already in terminal state")
)

// Storage errors

var (
	// ErrStorageUnavailable indicates the persistence store failed; the
	// work was already done and must not be silently lost
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AI backend errors

var (
	// ErrRateLimitExceeded indicates the backend rate limit was hit
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrMalformedResponse indicates the backend returned output that does
	// not satisfy the constrained contract
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
