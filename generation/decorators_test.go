package generation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeoutClassifiesDeadline(t *testing.T) {
	slow := GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected a timeout error")
	}

	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if genErr.Reason != ReasonTimeout {
		t.Errorf("Reason = %q, want %q", genErr.Reason, ReasonTimeout)
	}
}

func TestWithTimeoutClassifiesCallerCancellation(t *testing.T) {
	blocked := GeneratorFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(blocked, time.Minute).Generate(ctx, "prompt")
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if genErr.Reason != ReasonCanceled {
		t.Errorf("Reason = %q, want %q", genErr.Reason, ReasonCanceled)
	}
}

func TestWithTimeoutPassesThroughSuccessAndBackendErrors(t *testing.T) {
	ok := GeneratorFunc(func(context.Context, string) (string, error) {
		return "text", nil
	})
	text, err := WithTimeout(ok, time.Second).Generate(context.Background(), "p")
	if err != nil || text != "text" {
		t.Errorf("Generate() = %q, %v", text, err)
	}

	backendErr := Errorf(ReasonStatus, "401 unauthorized")
	failing := GeneratorFunc(func(context.Context, string) (string, error) {
		return "", backendErr
	})
	_, err = WithTimeout(failing, time.Second).Generate(context.Background(), "p")
	var genErr *Error
	if !errors.As(err, &genErr) || genErr.Reason != ReasonStatus {
		t.Errorf("backend error was re-classified: %v", err)
	}
}

func TestWithThrottleSpacesCalls(t *testing.T) {
	instant := GeneratorFunc(func(context.Context, string) (string, error) {
		return "x", nil
	})
	throttled := WithThrottle(instant, 30*time.Millisecond)

	started := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := throttled.Generate(context.Background(), "p"); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
	}
	// Three calls with 30ms spacing need at least two waits.
	if elapsed := time.Since(started); elapsed < 60*time.Millisecond {
		t.Errorf("three calls completed in %v, want at least 60ms", elapsed)
	}
}

func TestWithThrottleHonoursCancellation(t *testing.T) {
	instant := GeneratorFunc(func(context.Context, string) (string, error) {
		return "x", nil
	})
	throttled := WithThrottle(instant, time.Minute)

	if _, err := throttled.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := throttled.Generate(ctx, "p")
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if genErr.Reason != ReasonCanceled {
		t.Errorf("Reason = %q, want %q", genErr.Reason, ReasonCanceled)
	}
}

func TestScriptReplaysAndCounts(t *testing.T) {
	script := NewScript("first", "second")

	for _, want := range []string{"first", "second", "second"} {
		got, err := script.Generate(context.Background(), "p")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if got != want {
			t.Errorf("Generate() = %q, want %q", got, want)
		}
	}
	if script.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", script.Calls())
	}
}

func TestFailingScript(t *testing.T) {
	cause := Errorf(ReasonNetwork, "connection reset")
	script := NewFailingScript(cause)

	_, err := script.Generate(context.Background(), "p")
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want the configured cause", err)
	}
}

func TestAsErrorWrapsUnknownErrors(t *testing.T) {
	typed := Errorf(ReasonStatus, "429")
	if got := AsError(typed, ReasonNetwork); got.Reason != ReasonStatus {
		t.Errorf("typed error re-wrapped: %v", got)
	}

	plain := errors.New("something else")
	wrapped := AsError(plain, ReasonNetwork)
	if wrapped.Reason != ReasonNetwork || !errors.Is(wrapped, plain) {
		t.Errorf("AsError() = %v", wrapped)
	}
}
