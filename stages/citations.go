package stages

import (
	"context"
	"strings"

	"github.com/docsift/docsift/core/result"
)

// CitationsMarker opens the attribution section appended by the Citations
// stage.
const CitationsMarker = "SOURCES ATTRIBUTED:"

// Citations appends a source-attribution section naming the files the
// retrieved chunks came from. Like Formatter it is pure: no collaborator
// calls, no failures, non-Ok input relayed unchanged. It runs after
// Formatter in the default ordering.
type Citations struct{}

// NewCitations creates a Citations annotator.
func NewCitations() *Citations { return &Citations{} }

// Bind fixes the source list for one pipeline run and returns the
// resulting Stage. Sources are listed in first-retrieved order,
// deduplicated.
func (c *Citations) Bind(sources []string) Stage {
	return &boundCitations{sources: dedupe(sources)}
}

// Annotate appends the attribution section to Ok input. It is the
// underlying operation behind Bind for callers that hold the sources
// directly.
func (c *Citations) Annotate(_ context.Context, input result.Outcome, sources []string) result.Outcome {
	if !input.IsOK() {
		return input
	}

	var annotated strings.Builder
	annotated.WriteString(input.Text())
	annotated.WriteString("\n\n")
	annotated.WriteString(CitationsMarker)
	annotated.WriteString("\n")

	deduped := dedupe(sources)
	if len(deduped) == 0 {
		annotated.WriteString("- No source metadata available\n")
	} else {
		for _, source := range deduped {
			annotated.WriteString("- " + source + "\n")
		}
	}
	annotated.WriteString("All document references cite the files listed above.")

	return result.OK(annotated.String())
}

type boundCitations struct {
	sources []string
}

var _ Stage = (*boundCitations)(nil)

func (b *boundCitations) Name() string { return "cite" }

func (b *boundCitations) Run(ctx context.Context, input result.Outcome) result.Outcome {
	return (&Citations{}).Annotate(ctx, input, b.sources)
}

// dedupe removes duplicate source names, preserving first appearance.
func dedupe(sources []string) []string {
	seen := make(map[string]bool, len(sources))
	deduped := make([]string, 0, len(sources))
	for _, source := range sources {
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		deduped = append(deduped, source)
	}
	return deduped
}
