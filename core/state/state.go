// Package state holds the value threaded through the document-QA pipeline.
// A [Pipeline] is produced fresh by every stage (copy-on-write); earlier
// snapshots stay valid for concurrent readers such as run recorders and
// log sinks.
package state

import (
	"github.com/google/uuid"

	"github.com/docsift/docsift/core/result"
)

// Phase tracks how far a pipeline run has progressed. It advances
// monotonically from PhaseStarted to PhaseDone and exists for observability;
// callers branch on the outcome tags, never on the phase.
type Phase string

const (
	// PhaseStarted is the entry phase: only the query is populated.
	PhaseStarted Phase = "started"

	// PhaseRetrieved is reached once the retrieval stage has produced an
	// outcome, including an empty or failed one.
	PhaseRetrieved Phase = "retrieved"

	// PhaseSummarized is reached after the summarization stage.
	PhaseSummarized Phase = "summarized"

	// PhaseAnalyzed is reached after the analysis stage.
	PhaseAnalyzed Phase = "analyzed"

	// PhaseDone is the terminal phase. Every run reaches it; a failure-
	// carrying state is still a completed run.
	PhaseDone Phase = "done"
)

// phaseRank orders phases for the monotonicity guard in advance.
var phaseRank = map[Phase]int{
	PhaseStarted:    0,
	PhaseRetrieved:  1,
	PhaseSummarized: 2,
	PhaseAnalyzed:   3,
	PhaseDone:       4,
}

// Pipeline is the state snapshot for one run over one document. The zero
// value is not useful; create one with [New]. All With* methods return a
// new snapshot and leave the receiver untouched.
type Pipeline struct {
	// RunID identifies this run across log lines and result sets.
	RunID string

	// Query is the user question. Set once at construction, never changed.
	Query string

	// Target is the document name this run is bound to; empty for
	// single-document runs.
	Target string

	// Retrieved, Summarized and Analyzed hold the per-stage outcomes.
	// An unset outcome means the stage has not run.
	Retrieved  result.Outcome
	Summarized result.Outcome
	Analyzed   result.Outcome

	// Sources names the files the retrieved chunks came from, in
	// first-retrieved order. The citation stage reads it; nothing else
	// does.
	Sources []string

	// Final is set exactly once, when the run completes.
	Final result.Outcome

	// Phase records pipeline progress for observability.
	Phase Phase
}

// New creates the entry state for a query with a fresh run ID.
func New(query string) Pipeline {
	return Pipeline{
		RunID: uuid.NewString(),
		Query: query,
		Phase: PhaseStarted,
	}
}

// ForTarget returns a copy bound to a named document.
func (p Pipeline) ForTarget(target string) Pipeline {
	p.Target = target
	return p
}

// WithRetrieved returns a copy with the retrieval outcome recorded and the
// phase advanced.
func (p Pipeline) WithRetrieved(outcome result.Outcome) Pipeline {
	p.Retrieved = outcome
	return p.advance(PhaseRetrieved)
}

// WithSources returns a copy with the retrieved source names recorded.
// The slice is copied; the caller keeps ownership of its argument.
func (p Pipeline) WithSources(sources []string) Pipeline {
	p.Sources = append([]string(nil), sources...)
	return p
}

// WithSummarized returns a copy with the summarization outcome recorded.
func (p Pipeline) WithSummarized(outcome result.Outcome) Pipeline {
	p.Summarized = outcome
	return p.advance(PhaseSummarized)
}

// WithAnalyzed returns a copy with the analysis outcome recorded.
func (p Pipeline) WithAnalyzed(outcome result.Outcome) Pipeline {
	p.Analyzed = outcome
	return p.advance(PhaseAnalyzed)
}

// WithFinal returns a copy with the terminal outcome recorded and the phase
// set to done. Calling it again replaces nothing: once Final is set the
// first value wins, preserving the set-exactly-once invariant.
func (p Pipeline) WithFinal(outcome result.Outcome) Pipeline {
	if p.Final.IsSet() {
		return p.advance(PhaseDone)
	}
	p.Final = outcome
	return p.advance(PhaseDone)
}

// Content returns the most-processed non-empty outcome available, the
// input the finalize stage formats and cites. See result.FirstUsable for
// the precedence policy.
func (p Pipeline) Content() result.Outcome {
	return result.FirstUsable(p.Analyzed, p.Summarized, p.Retrieved)
}

// Done reports whether the run has reached its terminal phase.
func (p Pipeline) Done() bool {
	return p.Phase == PhaseDone
}

// advance moves the phase forward, never backward.
func (p Pipeline) advance(next Phase) Pipeline {
	if phaseRank[next] > phaseRank[p.Phase] {
		p.Phase = next
	}
	return p
}
