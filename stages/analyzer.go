package stages

import (
	"context"
	"fmt"

	"github.com/docsift/docsift/core/parse"
	"github.com/docsift/docsift/core/result"
	"github.com/docsift/docsift/generation"
)

const analysisPromptTemplate = `As a senior document analyst, perform a comprehensive analysis of the following content:

CONTENT FOR ANALYSIS:
%s

ANALYSIS REQUIREMENTS:
1. Identify and categorize main themes and key concepts
2. Extract and highlight important data points, statistics, and metrics
3. Analyze methodologies, approaches, or frameworks used
4. Identify relationships, patterns, and connections between elements
5. Note significant findings, conclusions, or recommendations
6. Point out any gaps, contradictions, or areas needing clarification
7. Provide insights on practical applications or implications

DETAILED ANALYSIS REPORT:`

const reportPromptTemplate = `As a senior document analyst, analyze the following content and respond with a single JSON object containing exactly these keys, each mapping to an array of strings: "themes", "data_points", "methodology", "relationships", "findings", "gaps", "implications".

CONTENT FOR ANALYSIS:
%s

Respond with only the JSON object.`

// Report is the structured form of the seven-point analysis, for callers
// that want sections instead of prose.
type Report struct {
	Themes        []string `json:"themes"`
	DataPoints    []string `json:"data_points"`
	Methodology   []string `json:"methodology"`
	Relationships []string `json:"relationships"`
	Findings      []string `json:"findings"`
	Gaps          []string `json:"gaps"`
	Implications  []string `json:"implications"`
}

// Analyzer extracts themes, metrics, methodology, relationships, findings,
// gaps and implications from summarised content.
type Analyzer struct {
	generator generation.Generator
}

var _ Stage = (*Analyzer)(nil)

// NewAnalyzer creates an Analyzer over the given generator.
func NewAnalyzer(generator generation.Generator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Name implements Stage.
func (a *Analyzer) Name() string { return "analyze" }

// Run analyses Ok input and relays anything else unchanged.
func (a *Analyzer) Run(ctx context.Context, input result.Outcome) result.Outcome {
	if !input.IsOK() {
		return input
	}

	text, err := a.generator.Generate(ctx, fmt.Sprintf(analysisPromptTemplate, input.Text()))
	if err != nil {
		genErr := generation.AsError(err, generation.ReasonNetwork)
		return result.Failf("analyzing content (%s): %v", genErr.Reason, genErr.Err)
	}

	return result.OK(AnalysisMarker + "\n" + text)
}

// StructuredReport asks the model for the analysis as JSON and parses it,
// repairing the usual model JSON defects on the way. It is an alternative
// surface to Run, not part of the pipeline's default stage sequence.
func (a *Analyzer) StructuredReport(ctx context.Context, content string) (*Report, error) {
	text, err := a.generator.Generate(ctx, fmt.Sprintf(reportPromptTemplate, content))
	if err != nil {
		return nil, fmt.Errorf("generating structured analysis: %w", err)
	}

	report, err := parse.ParseAs[Report](text)
	if err != nil {
		return nil, fmt.Errorf("parsing structured analysis: %w", err)
	}
	return &report, nil
}
