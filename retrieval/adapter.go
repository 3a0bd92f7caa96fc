package retrieval

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Adapter normalises one concrete search capability into the single
// contract the pipeline consumes: Fetch(ctx, query) -> chunks. The
// capability is probed exactly once, at construction; per-call dynamic
// dispatch is gone by the time the pipeline runs.
//
// An Adapter holds no per-call state, so a single instance is safe to
// share across concurrently running pipelines.
type Adapter struct {
	fetch       QueryFunc
	capability  string
	convertHTML bool
}

// AdapterOption configures an Adapter at construction.
type AdapterOption func(*Adapter)

// WithoutHTMLConversion disables the Markdown normalisation of
// HTML-formatted chunks.
func WithoutHTMLConversion() AdapterOption {
	return func(adapter *Adapter) { adapter.convertHTML = false }
}

// NewAdapter probes source for a supported search capability and binds it.
// The shapes are tried in fixed priority order: [RelevantFetcher], then
// [Invoker], then a plain [QueryFunc]. A source exposing none of them is a
// setup error, reported as *Error with [ReasonUnsupported] — the one
// retrieval failure that reaches the caller instead of being folded into
// the pipeline state.
func NewAdapter(source any, opts ...AdapterOption) (*Adapter, error) {
	adapter := &Adapter{convertHTML: true}

	switch capability := source.(type) {
	case RelevantFetcher:
		adapter.fetch = capability.FetchRelevant
		adapter.capability = "fetch-relevant"
	case Invoker:
		adapter.fetch = capability.Invoke
		adapter.capability = "invoke"
	case func(ctx context.Context, query string) ([]Chunk, error):
		adapter.fetch = capability
		adapter.capability = "callable"
	default:
		return nil, Errorf(ReasonUnsupported, "search object %T exposes no compatible capability", source)
	}

	for _, opt := range opts {
		opt(adapter)
	}
	return adapter, nil
}

// Capability names the underlying shape that was bound, for log output.
func (adapter *Adapter) Capability() string { return adapter.capability }

// Fetch runs the bound search capability. Backend failures are wrapped as
// *Error with [ReasonBackend]. An empty chunk slice is a valid result,
// not an error; distinguishing the two is the caller's job via the
// pipeline's outcome tags.
func (adapter *Adapter) Fetch(ctx context.Context, query string) ([]Chunk, error) {
	chunks, err := adapter.fetch(ctx, query)
	if err != nil {
		return nil, Errorf(ReasonBackend, "searching documents: %w", err)
	}

	if adapter.convertHTML {
		chunks = normalizeHTML(chunks)
	}
	return chunks, nil
}

// normalizeHTML converts HTML-formatted chunks to Markdown so downstream
// prompts see clean text. Conversion failures leave the chunk untouched;
// a noisy chunk beats a lost one.
func normalizeHTML(chunks []Chunk) []Chunk {
	normalized := make([]Chunk, len(chunks))
	for i, chunk := range chunks {
		if strings.EqualFold(chunk.Format, "html") || strings.EqualFold(chunk.Format, "htm") {
			if markdown, err := htmltomarkdown.ConvertString(chunk.Content); err == nil {
				chunk.Content = markdown
				chunk.Format = "md"
			}
		}
		normalized[i] = chunk
	}
	return normalized
}

// RenderChunks formats retrieved chunks into the numbered document block
// fed to the summarization prompt, attributing each chunk to its source.
func RenderChunks(chunks []Chunk) string {
	var rendered strings.Builder
	rendered.WriteString("RETRIEVED DOCUMENTS:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&rendered, "DOCUMENT %d - %s (%s)\n", i+1, chunk.Source, strings.ToUpper(chunk.Format))
		fmt.Fprintf(&rendered, "Content: %s\n", chunk.Content)
		rendered.WriteString(strings.Repeat("-", 60) + "\n\n")
	}
	return rendered.String()
}
