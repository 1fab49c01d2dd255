// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import "github.com/pdiddy/journal-engine/pkg/types"

// ForConfig selects the embedding backend for an index configuration.
// The hash embedder is the default; "ollama" selects the HTTP backend.
func ForConfig(cfg types.IndexConfig) Embedder {
	if cfg.Embedder == "ollama" {
		return NewOllamaEmbedder(cfg.OllamaHost, cfg.OllamaModel)
	}
	return NewStaticEmbedder()
}
