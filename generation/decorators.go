package generation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// WithTimeout wraps inner so every Generate call runs under its own
// deadline. An expired deadline surfaces as an [Error] with
// [ReasonTimeout]; caller cancellation surfaces as [ReasonCanceled].
// The pipeline has no mid-stage cancellation of its own, so this wrapper
// is the one place a slow backend is cut off.
func WithTimeout(inner Generator, timeout time.Duration) Generator {
	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		text, err := inner.Generate(callCtx, prompt)
		if err == nil {
			return text, nil
		}

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", Errorf(ReasonTimeout, "backend call exceeded %s: %w", timeout, err)
		case errors.Is(err, context.Canceled):
			return "", Errorf(ReasonCanceled, "backend call canceled: %w", err)
		default:
			return "", err
		}
	})
}

// WithThrottle wraps inner so consecutive Generate calls are spaced at
// least delay apart. This is a resource-fairness policy for rate-limited
// backends during bulk multi-document runs, not a correctness requirement;
// waiting still honours ctx cancellation.
func WithThrottle(inner Generator, delay time.Duration) Generator {
	var mu sync.Mutex
	var lastCall time.Time

	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		mu.Lock()
		wait := delay - time.Since(lastCall)
		if wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				mu.Unlock()
				return "", Errorf(ReasonCanceled, "canceled while throttled: %w", ctx.Err())
			}
		}
		lastCall = time.Now()
		mu.Unlock()

		return inner.Generate(ctx, prompt)
	})
}
