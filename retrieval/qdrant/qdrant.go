// Package qdrant provides a retrieval capability backed by a Qdrant
// vector index. Queries are embedded with a generation.Embedder and
// matched with a gRPC similarity search; point payloads carry the chunk
// text and its source metadata under the "text", "source" and "format"
// fields.
package qdrant

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/docsift/docsift/generation"
	"github.com/docsift/docsift/retrieval"
)

// DefaultLimit is the top-k search limit used when none is configured.
const DefaultLimit = 5

// Searcher satisfies retrieval.RelevantFetcher over one Qdrant collection.
type Searcher struct {
	points     pb.PointsClient
	embedder   generation.Embedder
	collection string
	limit      uint64
}

var _ retrieval.RelevantFetcher = (*Searcher)(nil)

// Option configures a Searcher.
type Option func(*Searcher)

// WithLimit sets the top-k number of chunks returned per query. The value
// is passed through to the index; the pipeline does not interpret it.
func WithLimit(limit int) Option {
	return func(searcher *Searcher) {
		if limit > 0 {
			searcher.limit = uint64(limit)
		}
	}
}

// Connect dials the Qdrant gRPC endpoint and returns a Searcher bound to
// the given collection. The connection is plaintext, matching a local or
// in-cluster Qdrant deployment.
func Connect(addr, collection string, embedder generation.Embedder, opts ...Option) (*Searcher, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", addr, err)
	}

	searcher := &Searcher{
		points:     pb.NewPointsClient(conn),
		embedder:   embedder,
		collection: collection,
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(searcher)
	}
	return searcher, nil
}

// NewSearcher wraps an existing PointsClient; used by tests and callers
// that manage their own connection.
func NewSearcher(points pb.PointsClient, collection string, embedder generation.Embedder, opts ...Option) *Searcher {
	searcher := &Searcher{
		points:     points,
		embedder:   embedder,
		collection: collection,
		limit:      DefaultLimit,
	}
	for _, opt := range opts {
		opt(searcher)
	}
	return searcher
}

// FetchRelevant embeds the query and runs a similarity search, mapping
// point payloads to retrieval chunks. No matches yields an empty slice,
// not an error.
func (searcher *Searcher) FetchRelevant(ctx context.Context, query string) ([]retrieval.Chunk, error) {
	vector, err := searcher.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	response, err := searcher.points.Search(ctx, &pb.SearchPoints{
		CollectionName: searcher.collection,
		Vector:         vector,
		Limit:          searcher.limit,
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{
					Fields: []string{"text", "source", "format"},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching collection %q: %w", searcher.collection, err)
	}

	chunks := make([]retrieval.Chunk, 0, len(response.GetResult()))
	for _, point := range response.GetResult() {
		payload := point.GetPayload()
		chunks = append(chunks, retrieval.NewChunk(
			payload["text"].GetStringValue(),
			map[string]string{
				"source_file": payload["source"].GetStringValue(),
				"file_format": payload["format"].GetStringValue(),
			},
		))
	}
	return chunks, nil
}
