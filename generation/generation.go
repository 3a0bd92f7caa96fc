// Package generation defines the text-generation collaborator boundary.
// The pipeline depends only on [Generator]; concrete backends live in the
// generation/ollama and generation/openai subpackages, and decorators such
// as [WithTimeout] and [WithThrottle] wrap any Generator with caller-level
// policies.
package generation

import (
	"context"
	"errors"
	"fmt"
)

// Generator is the single capability the pipeline needs from a language
// model: turn a prompt into text. Implementations must be safe for
// concurrent use; the multi-document coordinator may run several pipelines
// against one Generator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls the underlying function.
func (fn GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return fn(ctx, prompt)
}

// Embedder computes an embedding vector for a text. Retrieval backends
// that search a vector index need one; the pipeline core does not.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Failure reasons carried by [Error].
const (
	// ReasonNetwork covers transport-level failures reaching the backend.
	ReasonNetwork = "network"

	// ReasonStatus covers non-success HTTP or API status responses,
	// including auth and quota rejections.
	ReasonStatus = "status"

	// ReasonTimeout marks a caller-level deadline expiring around the
	// backend call.
	ReasonTimeout = "timeout"

	// ReasonCanceled marks context cancellation by the caller.
	ReasonCanceled = "canceled"

	// ReasonEmpty marks a backend that answered successfully with no text.
	ReasonEmpty = "empty"
)

// Error is the typed failure returned by Generators. Stages convert it
// into a failed pipeline outcome at the stage boundary; it never crosses
// a stage as a raised error.
type Error struct {
	// Reason is one of the Reason* constants.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Errorf builds an Error with a formatted cause.
func Errorf(reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "generation failed: " + e.Reason
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// AsError extracts a *Error from err, wrapping unknown errors with the
// given fallback reason so callers always see a typed failure.
func AsError(err error, fallbackReason string) *Error {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr
	}
	return &Error{Reason: fallbackReason, Err: err}
}
