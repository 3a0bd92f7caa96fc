// Package stages implements the four text-transformation stages of the
// document-QA pipeline: Summarizer and Analyzer (backed by the generation
// collaborator) and Formatter and Citations (pure local transforms).
//
// Every stage obeys the same forwarding rule: a non-Ok input outcome is
// returned unchanged, with no transformation attempted and no collaborator
// call made. Generator failures never escape a stage as errors; they are
// folded into a Failed outcome at the stage boundary.
package stages

import (
	"context"

	"github.com/docsift/docsift/core/result"
)

// Stage is one transformation step. Run consumes the upstream outcome and
// produces this stage's outcome; it must be safe for concurrent use, as
// one stage instance is shared across concurrently running pipelines.
type Stage interface {
	// Name identifies the stage in logs and run records.
	Name() string

	// Run transforms the input outcome. Implementations relay non-Ok
	// input unchanged and never panic or return errors; every failure is
	// encoded in the outcome.
	Run(ctx context.Context, input result.Outcome) result.Outcome
}

// SummaryMarker prefixes summarizer output, making the stage's work
// recognisable in transcripts and tests.
const SummaryMarker = "SUMMARY:"

// AnalysisMarker prefixes analyzer output.
const AnalysisMarker = "ANALYSIS RESULTS:"
