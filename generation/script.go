package generation

import (
	"context"
	"sync"
)

// Script is a Generator for tests and offline demos. It replays canned
// responses in order, optionally failing with a fixed error, and counts
// calls so tests can assert that short-circuited stages never reached the
// backend.
type Script struct {
	mu        sync.Mutex
	responses []string
	next      int
	err       error
	calls     int
}

var _ Generator = (*Script)(nil)

// NewScript returns a Script that replays responses in order. Once the
// responses run out the last one is repeated.
func NewScript(responses ...string) *Script {
	return &Script{responses: responses}
}

// NewFailingScript returns a Script whose every call fails with err.
func NewFailingScript(err error) *Script {
	return &Script{err: err}
}

// Generate replays the next canned response or the configured error.
func (script *Script) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Errorf(ReasonCanceled, "scripted call canceled: %w", err)
	}

	script.mu.Lock()
	defer script.mu.Unlock()

	script.calls++
	if script.err != nil {
		return "", script.err
	}
	if len(script.responses) == 0 {
		return "", Errorf(ReasonEmpty, "script has no responses")
	}

	response := script.responses[script.next]
	if script.next < len(script.responses)-1 {
		script.next++
	}
	return response, nil
}

// Calls reports how many times Generate has been invoked.
func (script *Script) Calls() int {
	script.mu.Lock()
	defer script.mu.Unlock()
	return script.calls
}
