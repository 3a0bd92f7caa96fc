// Package result defines the tagged outcome type threaded through the
// document-QA pipeline. Every stage consumes and produces an [Outcome],
// which is exactly one of: Ok (usable text), Empty (the corpus had nothing
// relevant, a valid terminal condition), or Failed (a collaborator call
// went wrong).
//
// Internally the pipeline is driven by the Kind tag, never by substring
// matching. The legacy string sentinels ("No relevant documents found…",
// "Error …") exist only at the presentation boundary: [Outcome.Render]
// produces them and [Detect] classifies them back. This keeps the
// forwarding rule — a stage never transforms a non-Ok outcome, it only
// relays it — checkable by type instead of by string comparison.
package result

import (
	"fmt"
	"strings"
)

// Kind is the discriminant tag of an Outcome.
type Kind string

const (
	// KindUnset marks the zero Outcome: the owning stage has not produced
	// anything yet.
	KindUnset Kind = ""

	// KindOK marks an outcome carrying usable text.
	KindOK Kind = "ok"

	// KindEmpty marks a valid "nothing relevant found" outcome. It is not a
	// failure and must be surfaced to users differently from one.
	KindEmpty Kind = "empty"

	// KindFailed marks a recovered collaborator failure. The reason is
	// carried along; downstream stages relay it verbatim.
	KindFailed Kind = "failed"
)

const (
	// EmptyMarker is the user-facing text rendered for an Empty outcome.
	// The phrase "No relevant documents" is also what Detect recognises.
	EmptyMarker = "No relevant documents found for the query."

	// ErrorToken is the substring Detect uses to recognise rendered
	// failures in text produced by older tooling.
	ErrorToken = "Error"
)

// Outcome is an immutable tagged result: Ok(text) | Empty | Failed(reason).
// The zero value is unset (no stage has produced it). Construct values with
// [OK], [Empty], [Fail], or [Failf]; never mutate one in place.
type Outcome struct {
	kind   Kind
	text   string
	reason string
}

// OK returns an Ok outcome carrying text. Text that is blank after trimming
// is normalised to Empty, so "produced nothing" and "found nothing" collapse
// into the same tag.
func OK(text string) Outcome {
	if strings.TrimSpace(text) == "" {
		return Empty()
	}
	return Outcome{kind: KindOK, text: text}
}

// Empty returns the distinguished "no relevant content" outcome.
func Empty() Outcome {
	return Outcome{kind: KindEmpty}
}

// Fail returns a Failed outcome with the given reason. The reason should
// read naturally after the word "Error", e.g. "retrieving documents: …".
func Fail(reason string) Outcome {
	return Outcome{kind: KindFailed, reason: reason}
}

// Failf returns a Failed outcome with a formatted reason.
func Failf(format string, args ...any) Outcome {
	return Fail(fmt.Sprintf(format, args...))
}

// Kind returns the discriminant tag.
func (o Outcome) Kind() Kind { return o.kind }

// IsSet reports whether the outcome has been produced at all.
func (o Outcome) IsSet() bool { return o.kind != KindUnset }

// IsOK reports whether the outcome carries usable text.
func (o Outcome) IsOK() bool { return o.kind == KindOK }

// IsEmpty reports whether the outcome is the "nothing relevant" condition.
// An unset outcome is not Empty; it has simply not happened yet.
func (o Outcome) IsEmpty() bool { return o.kind == KindEmpty }

// IsFailed reports whether the outcome records a recovered failure.
func (o Outcome) IsFailed() bool { return o.kind == KindFailed }

// Text returns the carried text for Ok outcomes and "" otherwise.
func (o Outcome) Text() string {
	if o.kind != KindOK {
		return ""
	}
	return o.text
}

// Reason returns the failure reason for Failed outcomes and "" otherwise.
func (o Outcome) Reason() string {
	if o.kind != KindFailed {
		return ""
	}
	return o.reason
}

// Render converts the outcome into its user-facing text. This is the only
// place the string sentinels are produced; callers that need to branch
// should use the Kind accessors instead of inspecting the returned string.
func (o Outcome) Render() string {
	switch o.kind {
	case KindOK:
		return o.text
	case KindFailed:
		return ErrorToken + " " + o.reason
	default:
		return EmptyMarker
	}
}

// String implements fmt.Stringer for log output.
func (o Outcome) String() string {
	switch o.kind {
	case KindOK:
		return fmt.Sprintf("ok(%d chars)", len(o.text))
	case KindEmpty:
		return "empty"
	case KindFailed:
		return "failed(" + o.reason + ")"
	default:
		return "unset"
	}
}

// Detect classifies raw text coming from a boundary that still speaks in
// sentinels (heterogeneous tool output, persisted transcripts). The rules
// mirror Render: a string containing ErrorToken is Failed, a string
// containing the "No relevant documents" phrase (or nothing but whitespace)
// is Empty, anything else is Ok.
func Detect(text string) Outcome {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.Contains(text, ErrorToken):
		return Fail(strings.TrimSpace(strings.TrimPrefix(trimmed, ErrorToken)))
	case strings.Contains(text, "No relevant documents"):
		return Empty()
	case trimmed == "":
		return Empty()
	default:
		return OK(text)
	}
}

// FirstUsable returns the most-processed non-empty outcome among candidates,
// which must be ordered most-processed first. A Failed candidate counts as
// non-empty: the stage that failed is the one whose story the user should
// hear, not an earlier stage that happened to succeed. When every candidate
// is empty or unset, FirstUsable returns Empty, so a pipeline whose
// generative stages all misfired still terminates with a well-formed
// outcome. Skipping over empty candidates instead of hard-failing is a
// deliberate resilience policy: a degraded answer beats no answer.
func FirstUsable(candidates ...Outcome) Outcome {
	for _, candidate := range candidates {
		if candidate.IsOK() || candidate.IsFailed() {
			return candidate
		}
	}
	return Empty()
}
