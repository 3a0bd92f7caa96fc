// Package openai adapts any OpenAI-compatible chat-completions endpoint
// (OpenAI itself, OpenRouter, vLLM, LM Studio) to generation.Generator.
// The wire protocol is implemented directly over net/http.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docsift/docsift/generation"
)

// DefaultBaseURL is the OpenAI API endpoint. Override it with WithBaseURL
// for compatible gateways.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultHTTPTimeout bounds a single completion round-trip.
const DefaultHTTPTimeout = 2 * time.Minute

// Client is an OpenAI-compatible chat-completions Generator.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ generation.Generator = (*Client)(nil)

// New creates a Client for the given model. Configure it with the With*
// methods, which return the client for chaining.
func New(model string) *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// WithAPIKey sets the bearer token used for authentication.
func (client *Client) WithAPIKey(apiKey string) *Client {
	client.apiKey = apiKey
	return client
}

// WithBaseURL overrides the default endpoint, e.g. for OpenRouter or a
// local compatible server.
func (client *Client) WithBaseURL(baseURL string) *Client {
	client.baseURL = strings.TrimRight(baseURL, "/")
	return client
}

// WithHTTPClient sets the HTTP client used for outbound requests.
func (client *Client) WithHTTPClient(httpClient *http.Client) *Client {
	client.httpClient = httpClient
	return client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (client *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    client.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", generation.Errorf(generation.ReasonNetwork, "encoding request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", generation.Errorf(generation.ReasonNetwork, "building request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if client.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", generation.Errorf(generation.ReasonTimeout, "completion call timed out: %w", err)
		case errors.Is(err, context.Canceled):
			return "", generation.Errorf(generation.ReasonCanceled, "completion call canceled: %w", err)
		default:
			return "", generation.Errorf(generation.ReasonNetwork, "completion call failed: %w", err)
		}
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return "", generation.Errorf(generation.ReasonNetwork, "reading response: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return "", generation.Errorf(generation.ReasonStatus, "endpoint returned %d: %s", response.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", generation.Errorf(generation.ReasonNetwork, "decoding response: %w", err)
	}
	if decoded.Error != nil {
		return "", generation.Errorf(generation.ReasonStatus, "endpoint error (%s): %s", decoded.Error.Type, decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", generation.Errorf(generation.ReasonEmpty, "response contained no choices")
	}

	content := decoded.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", generation.Errorf(generation.ReasonEmpty, "model %q returned no text", client.model)
	}
	return content, nil
}

// String identifies the client in log output without exposing the API key.
func (client *Client) String() string {
	return fmt.Sprintf("openai-compatible(%s, %s)", client.baseURL, client.model)
}
