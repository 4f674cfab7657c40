// Package ollama adapts a local Ollama server as the embedding and
// completion backend. All calls go through the shared resilience executor;
// transient failures are wrapped as temporary so callers can degrade
// instead of failing the query.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campusworks/admissions-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL       string
	generateModel string
	embedModel    string
	httpClient    *http.Client
	executor      *resilience.Executor
}

func New(baseURL, generateModel, embedModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		generateModel: generateModel,
		embedModel:    embedModel,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
		executor:      executor,
	}
}

// Embedder implements the embedding provider port on top of the client.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	err := e.client.executor.Run(ctx, "ollama.embed", classifyError, func(ctx context.Context) error {
		return e.client.postJSON(ctx, "/api/embed", request, &response, "embed")
	})
	if err != nil {
		return nil, markTemporary("embed", err)
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding result")
	}
	return vectors[0], nil
}

// Completer implements the completion provider port.
type Completer struct {
	client *Client
}

func NewCompleter(client *Client) *Completer {
	return &Completer{client: client}
}

func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := map[string]any{
		"model":  c.client.generateModel,
		"system": systemPrompt,
		"prompt": userPrompt,
		"stream": false,
	}

	var response struct {
		Response string `json:"response"`
	}
	err := c.client.executor.Run(ctx, "ollama.generate", classifyError, func(ctx context.Context) error {
		return c.client.postJSON(ctx, "/api/generate", request, &response, "generate")
	})
	if err != nil {
		return "", markTemporary("generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
