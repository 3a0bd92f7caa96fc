package stages

import (
	"context"
	"strings"
	"testing"

	"github.com/docsift/docsift/core/result"
	"github.com/docsift/docsift/generation"
)

func TestStagesRelayNonOKInputWithoutGenerating(t *testing.T) {
	inputs := []struct {
		name  string
		input result.Outcome
	}{
		{name: "empty", input: result.Empty()},
		{name: "failed", input: result.Fail("retrieving documents: dial refused")},
	}

	for _, tc := range inputs {
		t.Run(tc.name, func(t *testing.T) {
			script := generation.NewScript("should never be used")
			stageSet := []Stage{
				NewSummarizer(script),
				NewAnalyzer(script),
				NewFormatter(),
				(&Citations{}).Bind([]string{"bio.txt"}),
			}

			for _, stage := range stageSet {
				output := stage.Run(context.Background(), tc.input)
				if output != tc.input {
					t.Errorf("stage %q transformed a non-Ok input: got %v, want %v",
						stage.Name(), output, tc.input)
				}
			}

			if calls := script.Calls(); calls != 0 {
				t.Errorf("generator was called %d times on non-Ok input", calls)
			}
		})
	}
}

func TestSummarizerMarksItsOutput(t *testing.T) {
	script := generation.NewScript("Photosynthesis converts light into chemical energy.")
	summarizer := NewSummarizer(script)

	output := summarizer.Run(context.Background(), result.OK("retrieved document text"))
	if !output.IsOK() {
		t.Fatalf("output = %v", output)
	}
	if !strings.HasPrefix(output.Text(), SummaryMarker) {
		t.Errorf("summary output missing %q prefix: %q", SummaryMarker, output.Text())
	}
	if !strings.Contains(output.Text(), "chemical energy") {
		t.Errorf("summary output lost the model text: %q", output.Text())
	}
	if script.Calls() != 1 {
		t.Errorf("generator called %d times, want 1", script.Calls())
	}
}

func TestSummarizerFoldsGeneratorFailure(t *testing.T) {
	script := generation.NewFailingScript(
		generation.Errorf(generation.ReasonTimeout, "backend call exceeded 30s"))
	summarizer := NewSummarizer(script)

	output := summarizer.Run(context.Background(), result.OK("text"))
	if !output.IsFailed() {
		t.Fatalf("output = %v, want failed", output)
	}
	if !strings.Contains(output.Reason(), "generating summary") {
		t.Errorf("reason = %q, want the stage named", output.Reason())
	}
	if !strings.Contains(output.Reason(), generation.ReasonTimeout) {
		t.Errorf("reason = %q, want the failure class included", output.Reason())
	}
}

func TestAnalyzerMarksItsOutput(t *testing.T) {
	script := generation.NewScript("Key theme: energy conversion.")
	analyzer := NewAnalyzer(script)

	output := analyzer.Run(context.Background(), result.OK(SummaryMarker+"\nsummary text"))
	if !output.IsOK() {
		t.Fatalf("output = %v", output)
	}
	if !strings.HasPrefix(output.Text(), AnalysisMarker) {
		t.Errorf("analysis output missing %q prefix: %q", AnalysisMarker, output.Text())
	}
}

func TestAnalyzerFoldsGeneratorFailure(t *testing.T) {
	script := generation.NewFailingScript(
		generation.Errorf(generation.ReasonStatus, "429 too many requests"))
	analyzer := NewAnalyzer(script)

	output := analyzer.Run(context.Background(), result.OK("summary"))
	if !output.IsFailed() {
		t.Fatalf("output = %v, want failed", output)
	}
	if !strings.Contains(output.Reason(), "analyzing content") {
		t.Errorf("reason = %q", output.Reason())
	}
}

func TestAnalyzerStructuredReport(t *testing.T) {
	script := generation.NewScript("```json\n" + `{
		"themes": ["energy conversion"],
		"data_points": ["6CO2 + 6H2O -> C6H12O6 + 6O2"],
		"methodology": [],
		"relationships": ["light intensity drives reaction rate"],
		"findings": ["chlorophyll is the primary pigment"],
		"gaps": [],
		"implications": []
	}` + "\n```")
	analyzer := NewAnalyzer(script)

	report, err := analyzer.StructuredReport(context.Background(), "summary text")
	if err != nil {
		t.Fatalf("StructuredReport() error = %v", err)
	}
	if len(report.Themes) != 1 || report.Themes[0] != "energy conversion" {
		t.Errorf("Themes = %v", report.Themes)
	}
	if len(report.Findings) != 1 {
		t.Errorf("Findings = %v", report.Findings)
	}
}

func TestFormatterFramesContent(t *testing.T) {
	formatter := NewFormatter()

	output := formatter.Run(context.Background(), result.OK("analysis text"))
	if !output.IsOK() {
		t.Fatalf("output = %v", output)
	}
	text := output.Text()
	if !strings.HasPrefix(text, "FORMATTED RESPONSE\n==================") {
		t.Errorf("missing response frame: %q", text)
	}
	if !strings.Contains(text, "analysis text") {
		t.Errorf("content lost: %q", text)
	}
}

func TestCitationsAnnotateListsSources(t *testing.T) {
	citations := NewCitations()

	output := citations.Annotate(context.Background(), result.OK("answer"),
		[]string{"spec.pdf", "bio.txt", "spec.pdf", ""})
	if !output.IsOK() {
		t.Fatalf("output = %v", output)
	}

	text := output.Text()
	if !strings.Contains(text, CitationsMarker) {
		t.Errorf("missing %q: %q", CitationsMarker, text)
	}
	if strings.Count(text, "- spec.pdf") != 1 {
		t.Errorf("sources must be deduplicated: %q", text)
	}
	if !strings.Contains(text, "- bio.txt") {
		t.Errorf("missing source: %q", text)
	}
	// First-retrieved order is preserved.
	if strings.Index(text, "- spec.pdf") > strings.Index(text, "- bio.txt") {
		t.Errorf("source order not preserved: %q", text)
	}
}

func TestCitationsWithoutMetadata(t *testing.T) {
	citations := NewCitations()

	output := citations.Annotate(context.Background(), result.OK("answer"), nil)
	if !strings.Contains(output.Text(), "- No source metadata available") {
		t.Errorf("missing placeholder line: %q", output.Text())
	}
}
