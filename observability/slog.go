package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// SlogObserver routes log events and spans through a slog.Logger. Spans
// are logged at Debug on start and on end with their elapsed duration;
// failed spans are logged at Error.
type SlogObserver struct {
	logger *slog.Logger
}

var _ Observer = (*SlogObserver)(nil)

// NewSlog creates an Observer over the given slog.Logger. A nil logger
// falls back to a text handler on stderr with the level taken from the
// DOCSIFT_LOG_LEVEL environment variable (debug, info, warn, error;
// default info).
func NewSlog(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: levelFromEnv(),
		}))
	}
	return &SlogObserver{logger: logger}
}

// levelFromEnv maps DOCSIFT_LOG_LEVEL to a slog level.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("DOCSIFT_LOG_LEVEL")) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (o *SlogObserver) Debug(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

func (o *SlogObserver) Info(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

func (o *SlogObserver) Warn(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

func (o *SlogObserver) Error(ctx context.Context, msg string, attrs ...Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

// StartSpan logs the span start at Debug and returns a Span whose End logs
// the elapsed duration.
func (o *SlogObserver) StartSpan(ctx context.Context, name string, attrs ...Attribute) Span {
	logAttrs := append(toSlogAttrs(attrs), slog.String("span", name), slog.String("event", "span.start"))
	o.logger.LogAttrs(ctx, slog.LevelDebug, "span started", logAttrs...)

	return &slogSpan{
		name:    name,
		started: time.Now(),
		ctx:     ctx,
		logger:  o.logger,
	}
}

func (o *SlogObserver) log(ctx context.Context, level slog.Level, msg string, attrs []Attribute) {
	o.logger.LogAttrs(ctx, level, msg, toSlogAttrs(attrs)...)
}

func toSlogAttrs(attrs []Attribute) []slog.Attr {
	slogAttrs := make([]slog.Attr, 0, len(attrs)+2)
	for _, attr := range attrs {
		slogAttrs = append(slogAttrs, slog.Any(attr.Key, attr.Value))
	}
	return slogAttrs
}

type slogSpan struct {
	name    string
	started time.Time
	ctx     context.Context
	logger  *slog.Logger

	mu  sync.Mutex
	err error
}

// Fail records err; the failure is reported when End runs.
func (span *slogSpan) Fail(err error) {
	span.mu.Lock()
	defer span.mu.Unlock()
	span.err = err
}

// End logs the span completion with its duration, at Error when a failure
// was recorded and at Debug otherwise.
func (span *slogSpan) End() {
	span.mu.Lock()
	spanErr := span.err
	span.mu.Unlock()

	elapsed := time.Since(span.started)
	if spanErr != nil {
		span.logger.LogAttrs(span.ctx, slog.LevelError, "span failed",
			slog.String("span", span.name),
			slog.Duration("duration", elapsed),
			slog.String("error", spanErr.Error()),
		)
		return
	}
	span.logger.LogAttrs(span.ctx, slog.LevelDebug, "span completed",
		slog.String("span", span.name),
		slog.Duration("duration", elapsed),
	)
}
