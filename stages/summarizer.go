package stages

import (
	"context"
	"fmt"

	"github.com/docsift/docsift/core/result"
	"github.com/docsift/docsift/generation"
)

const summaryPromptTemplate = `As an expert content summarizer, provide a comprehensive summary of the following text that preserves all critical information while being concise and well-organized:

TEXT TO SUMMARIZE:
%s

SUMMARY REQUIREMENTS:
- Preserve all key facts, data points, and concepts
- Maintain context and relationships between ideas
- Highlight the most important information
- Ensure technical accuracy
- Organize in a logical, readable structure

COMPREHENSIVE SUMMARY:`

// Summarizer condenses retrieved document text while preserving facts and
// structure. It is the first stage that talks to the generation
// collaborator.
type Summarizer struct {
	generator generation.Generator
}

var _ Stage = (*Summarizer)(nil)

// NewSummarizer creates a Summarizer over the given generator.
func NewSummarizer(generator generation.Generator) *Summarizer {
	return &Summarizer{generator: generator}
}

// Name implements Stage.
func (s *Summarizer) Name() string { return "summarize" }

// Run summarises Ok input and relays anything else unchanged. A generator
// failure becomes a Failed outcome carrying the failure reason.
func (s *Summarizer) Run(ctx context.Context, input result.Outcome) result.Outcome {
	if !input.IsOK() {
		return input
	}

	text, err := s.generator.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, input.Text()))
	if err != nil {
		genErr := generation.AsError(err, generation.ReasonNetwork)
		return result.Failf("generating summary (%s): %v", genErr.Reason, genErr.Err)
	}

	return result.OK(SummaryMarker + "\n" + text)
}
