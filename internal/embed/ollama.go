// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultOllamaHost is the local Ollama endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the embedding model requested when none is
	// configured.
	DefaultOllamaModel = "nomic-embed-text"

	defaultOllamaDimensions = 768
	defaultOllamaTimeout    = 60 * time.Second
)

// OllamaEmbedder generates embeddings via a local Ollama HTTP API.
type OllamaEmbedder struct {
	client *http.Client
	host   string
	model  string
	dims   int
}

var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder returns an embedder talking to the Ollama
// embeddings endpoint at host. Empty host and model select the defaults.
func NewOllamaEmbedder(host, model string) *OllamaEmbedder {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaEmbedder{
		client: &http.Client{Timeout: defaultOllamaTimeout},
		host:   host,
		model:  model,
		dims:   defaultOllamaDimensions,
	}
}

// Dimensions returns the vector width of the configured model.
func (e *OllamaEmbedder) Dimensions() int { return e.dims }

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed requests one embedding from Ollama.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("encoding embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Ollama API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama API returned HTTP %d", resp.StatusCode)
	}

	var or ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("parsing Ollama response: %w", err)
	}
	if len(or.Embedding) == 0 {
		return nil, fmt.Errorf("Ollama returned an empty embedding")
	}

	// First call pins the dimensionality for the rest of the index run.
	if e.dims != len(or.Embedding) {
		e.dims = len(or.Embedding)
	}
	return normalize(or.Embedding), nil
}
