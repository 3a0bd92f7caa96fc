package pipeline

import (
	"context"

	"github.com/docsift/docsift/core/result"
	"github.com/docsift/docsift/core/state"
	"github.com/docsift/docsift/observability"
	"github.com/docsift/docsift/retrieval"
	"github.com/docsift/docsift/stages"
)

// steps holds the stage implementations and collaborators shared by both
// executor strategies. Each method consumes a state snapshot and produces
// the next one; none of them ever returns an error — every failure is
// folded into the outcome it records, so the machine always reaches the
// terminal phase.
type steps struct {
	adapter    *retrieval.Adapter
	summarizer stages.Stage
	analyzer   stages.Stage
	formatter  stages.Stage
	citations  *stages.Citations
	observer   observability.Observer
}

// retrieve runs the search capability and records its outcome. Backend
// failures and empty result sets are both recovered here: the former as a
// Failed outcome, the latter as the distinguished Empty outcome. Neither
// escapes as an error.
func (s *steps) retrieve(ctx context.Context, st state.Pipeline) state.Pipeline {
	span := s.observer.StartSpan(ctx, "stage.retrieve",
		observability.String("run_id", st.RunID),
		observability.String("query", observability.Truncate(st.Query, 120)),
	)
	defer span.End()

	chunks, err := s.adapter.Fetch(ctx, st.Query)
	if err != nil {
		span.Fail(err)
		return st.WithRetrieved(result.Failf("retrieving documents: %v", err))
	}

	if len(chunks) == 0 {
		s.observer.Debug(ctx, "retrieval returned no chunks",
			observability.String("run_id", st.RunID))
		return st.WithRetrieved(result.Empty())
	}

	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, chunk.Source)
	}

	s.observer.Debug(ctx, "retrieval complete",
		observability.String("run_id", st.RunID),
		observability.Int("chunks", len(chunks)),
	)
	return st.WithRetrieved(result.OK(retrieval.RenderChunks(chunks))).WithSources(sources)
}

// summarize condenses the retrieved text; non-Ok retrieval is relayed by
// the stage itself.
func (s *steps) summarize(ctx context.Context, st state.Pipeline) state.Pipeline {
	return st.WithSummarized(s.runStage(ctx, s.summarizer, st, st.Retrieved))
}

// analyze extracts insights from the summary.
func (s *steps) analyze(ctx context.Context, st state.Pipeline) state.Pipeline {
	return st.WithAnalyzed(s.runStage(ctx, s.analyzer, st, st.Summarized))
}

// finalize selects the most-processed non-empty content, applies the
// formatting and citation stages to Ok content, and seals the run. Empty
// and failed content is sealed as-is, untouched by the pure stages.
func (s *steps) finalize(ctx context.Context, st state.Pipeline) state.Pipeline {
	span := s.observer.StartSpan(ctx, "stage.finalize",
		observability.String("run_id", st.RunID))
	defer span.End()

	content := st.Content()
	if !content.IsOK() {
		return st.WithFinal(content)
	}

	formatted := s.formatter.Run(ctx, content)
	cited := s.citations.Bind(st.Sources).Run(ctx, formatted)
	return st.WithFinal(cited)
}

// runStage executes one generator-backed stage under a span.
func (s *steps) runStage(ctx context.Context, stage stages.Stage, st state.Pipeline, input result.Outcome) result.Outcome {
	span := s.observer.StartSpan(ctx, "stage."+stage.Name(),
		observability.String("run_id", st.RunID),
		observability.String("input", input.String()),
	)
	defer span.End()

	output := stage.Run(ctx, input)
	if output.IsFailed() && !input.IsFailed() {
		s.observer.Warn(ctx, "stage recovered a collaborator failure",
			observability.String("run_id", st.RunID),
			observability.String("stage", stage.Name()),
			observability.String("reason", output.Reason()),
		)
	}
	return output
}
