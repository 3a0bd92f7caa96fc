// Package observability provides the structured logging and span surface
// used across the pipeline. It is deliberately small: an [Observer] is a
// leveled attribute logger plus named spans for timing stage and run
// boundaries. The default backend is log/slog; [Nop] silences everything.
package observability

import (
	"context"
	"fmt"
	"time"
)

// Observer receives log events and spans from pipeline components.
// Implementations must be safe for concurrent use: coordinator fan-out
// runs several pipelines at once against one Observer.
type Observer interface {
	// Debug, Info, Warn and Error emit a leveled structured log event.
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)

	// StartSpan opens a named span. The returned Span must be ended
	// exactly once; End logs the elapsed duration.
	StartSpan(ctx context.Context, name string, attrs ...Attribute) Span
}

// Span is a single timed unit of work, such as one stage execution.
type Span interface {
	// End completes the span.
	End()
	// Fail records err on the span before it is ended.
	Fail(err error)
}

// Attribute is a key-value pair attached to log events and spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

// Int creates an integer attribute.
func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

// Duration creates a duration attribute.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error creates an error attribute. A nil error yields an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: "error", Value: ""}
	}
	return Attribute{Key: "error", Value: err.Error()}
}

// Truncate shortens s for log output, appending the original length so the
// reader knows data was cut. Prompts and model output routinely run to
// thousands of characters.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nopObserver{} }

type nopObserver struct{}

func (nopObserver) Debug(context.Context, string, ...Attribute) {}
func (nopObserver) Info(context.Context, string, ...Attribute)  {}
func (nopObserver) Warn(context.Context, string, ...Attribute)  {}
func (nopObserver) Error(context.Context, string, ...Attribute) {}
func (nopObserver) StartSpan(context.Context, string, ...Attribute) Span {
	return nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End()       {}
func (nopSpan) Fail(error) {}
