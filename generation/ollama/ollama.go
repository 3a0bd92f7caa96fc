// Package ollama adapts a local Ollama server to the generation
// collaborator interfaces. One [Client] serves both as a
// generation.Generator (the /api/generate endpoint) and as a
// generation.Embedder (the /api/embeddings endpoint).
package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/docsift/docsift/generation"
)

// DefaultHost is used when neither the host argument nor OLLAMA_HOST is set.
const DefaultHost = "http://localhost:11434"

// DefaultHTTPTimeout bounds a single HTTP exchange with the server.
// Callers wanting a tighter end-to-end budget should additionally wrap the
// client with generation.WithTimeout.
const DefaultHTTPTimeout = 5 * time.Minute

// Client talks to an Ollama server for completions and embeddings.
type Client struct {
	api        *api.Client
	model      string
	embedModel string
}

var (
	_ generation.Generator = (*Client)(nil)
	_ generation.Embedder  = (*Client)(nil)
)

// New creates a Client for the given server host and model names. An empty
// host falls back to the OLLAMA_HOST environment variable and then to
// [DefaultHost]. An empty embedModel reuses model for embeddings.
func New(host, model, embedModel string) (*Client, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	parsedURL, err := url.Parse(host)
	if err != nil {
		return nil, generation.Errorf(generation.ReasonNetwork, "invalid ollama host %q: %w", host, err)
	}

	if embedModel == "" {
		embedModel = model
	}

	return &Client{
		api:        api.NewClient(parsedURL, &http.Client{Timeout: DefaultHTTPTimeout}),
		model:      model,
		embedModel: embedModel,
	}, nil
}

// Generate sends prompt to the completion endpoint and returns the full
// response text. Streaming is disabled; the server answers in one message.
func (client *Client) Generate(ctx context.Context, prompt string) (string, error) {
	streaming := false
	request := &api.GenerateRequest{
		Model:  client.model,
		Prompt: prompt,
		Stream: &streaming,
	}

	var output strings.Builder
	err := client.api.Generate(ctx, request, func(response api.GenerateResponse) error {
		output.WriteString(response.Response)
		return nil
	})
	if err != nil {
		return "", classify(err)
	}

	text := output.String()
	if strings.TrimSpace(text) == "" {
		return "", generation.Errorf(generation.ReasonEmpty, "model %q returned no text", client.model)
	}
	return text, nil
}

// Embed computes an embedding vector for text using the embedding model.
func (client *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	response, err := client.api.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  client.embedModel,
		Prompt: text,
	})
	if err != nil {
		return nil, classify(err)
	}

	vector := make([]float32, len(response.Embedding))
	for i, component := range response.Embedding {
		vector[i] = float32(component)
	}
	return vector, nil
}

// classify converts transport and API errors into typed generation errors.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return generation.Errorf(generation.ReasonTimeout, "ollama call timed out: %w", err)
	case errors.Is(err, context.Canceled):
		return generation.Errorf(generation.ReasonCanceled, "ollama call canceled: %w", err)
	default:
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return generation.Errorf(generation.ReasonStatus, "ollama returned status %d: %w", statusErr.StatusCode, err)
		}
		return generation.Errorf(generation.ReasonNetwork, "ollama call failed: %w", err)
	}
}
