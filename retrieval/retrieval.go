// Package retrieval defines the document-search collaborator boundary.
// Heterogeneous search capabilities are normalised once, at construction
// time, into a single [Adapter] contract the pipeline consumes. The
// package also provides the [Registry] that maps document names to their
// adapters for multi-document queries.
package retrieval

import (
	"context"
	"fmt"
)

// UnknownSource is substituted when a search backend attaches no source
// metadata to a chunk.
const UnknownSource = "Unknown"

// Chunk is one retrieved piece of document text. Chunks are produced by
// the search collaborator and consumed read-only by the pipeline.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// Source names the originating file, for citation output.
	Source string

	// Format is the originating file format ("pdf", "html", "txt", …).
	Format string
}

// NewChunk builds a Chunk from raw collaborator output. Missing source or
// format metadata defaults to [UnknownSource]; the pipeline never fails on
// absent attribution, it just cites what it has.
func NewChunk(content string, metadata map[string]string) Chunk {
	chunk := Chunk{
		Content: content,
		Source:  metadata["source_file"],
		Format:  metadata["file_format"],
	}
	if chunk.Source == "" {
		chunk.Source = UnknownSource
	}
	if chunk.Format == "" {
		chunk.Format = UnknownSource
	}
	return chunk
}

// The three underlying capability shapes an Adapter can normalise,
// in probing priority order.

// RelevantFetcher is the preferred search capability shape.
type RelevantFetcher interface {
	FetchRelevant(ctx context.Context, query string) ([]Chunk, error)
}

// Invoker is the generic invocation shape some search backends expose.
type Invoker interface {
	Invoke(ctx context.Context, query string) ([]Chunk, error)
}

// QueryFunc is the plain-callable shape; it also serves as the adapter
// target for closures over in-memory corpora.
type QueryFunc func(ctx context.Context, query string) ([]Chunk, error)

// FetchRelevant makes a QueryFunc satisfy RelevantFetcher.
func (fn QueryFunc) FetchRelevant(ctx context.Context, query string) ([]Chunk, error) {
	return fn(ctx, query)
}

// Failure reasons carried by [Error].
const (
	// ReasonUnsupported marks a search object exposing none of the known
	// capability shapes. This is a programming error surfaced at adapter
	// construction, not a runtime retrieval failure.
	ReasonUnsupported = "unsupported"

	// ReasonBackend marks a search backend call that failed at runtime.
	ReasonBackend = "backend"
)

// Error is the typed failure for the retrieval boundary.
type Error struct {
	// Reason is one of the Reason* constants.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Errorf builds an Error with a formatted cause.
func Errorf(reason, format string, args ...any) *Error {
	return &Error{Reason: reason, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "retrieval failed: " + e.Reason
	}
	return fmt.Sprintf("retrieval failed (%s): %v", e.Reason, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }
