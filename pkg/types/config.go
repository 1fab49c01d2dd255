package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "journal-engine/0.1"). The CrossRef mailto address is
	// appended for polite pool access.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the catalog fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is included in the User-Agent as a mailto address, per
	// CrossRef polite-use guidelines.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// RowsPerPage is the page size requested from the works endpoint
	// (default 1000, the CrossRef maximum).
	RowsPerPage int `json:"rows_per_page" yaml:"rows_per_page"`

	// PageDelay is the fixed delay between page requests (default 500ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// DataDir is the directory journal JSON files are written to.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// EnrichConfig holds settings for the abstract enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RateLimit is the number of lookups allowed per RateWindow (default 1).
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`

	// RateWindow is the rolling window the rate limit applies to (default 1s).
	RateWindow time.Duration `json:"rate_window" yaml:"rate_window"`

	// DataDir is the directory of journal JSON files to enrich.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IndexConfig holds settings for the vector collection stage.
type IndexConfig struct {
	// DataDir is the directory of journal JSON files to index.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// IndexDir is the directory the collection is persisted under.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// Collection is the collection name (default "academic_papers").
	Collection string `json:"collection" yaml:"collection"`

	// Embedder selects the embedding backend: "static" or "ollama".
	Embedder string `json:"embedder" yaml:"embedder"`

	// OllamaHost is the Ollama endpoint used when Embedder is "ollama".
	OllamaHost string `json:"ollama_host,omitempty" yaml:"ollama_host,omitempty"`

	// OllamaModel is the embedding model name used when Embedder is "ollama".
	OllamaModel string `json:"ollama_model,omitempty" yaml:"ollama_model,omitempty"`

	// MaxResults is the default maximum number of search results (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP control surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Enrich EnrichConfig `json:"enrich" yaml:"enrich"`
	Index  IndexConfig  `json:"index" yaml:"index"`
	Server ServerConfig `json:"server" yaml:"server"`
}
