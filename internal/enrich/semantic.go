// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich fills in missing abstracts from the Semantic Scholar
// API, one DOI lookup at a time under a rolling-window rate limit.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/journal-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar per-paper endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,abstract"

// LookupStatus classifies the outcome of one abstract lookup. Callers
// decide loop-continue versus abort from the status instead of
// inspecting error types.
type LookupStatus int

const (
	// LookupFound: the API returned a paper with a non-empty abstract.
	LookupFound LookupStatus = iota

	// LookupNotFound: the API answered but has no abstract for this
	// DOI (missing paper or null abstract). Skippable; the record is
	// marked unavailable so it is never queried again.
	LookupNotFound

	// LookupFailed: a transport failure or a rate-limit/auth rejection.
	// Fatal for the enclosing pass; a network failure will recur on
	// the next record too.
	LookupFailed
)

// LookupResult carries the outcome of one lookup.
type LookupResult struct {
	Status   LookupStatus
	Abstract string
	Err      error
}

// SemanticClient queries the Semantic Scholar API by DOI.
type SemanticClient struct {
	HTTPClient *http.Client
	Config     types.EnrichConfig
}

// NewSemanticClient returns a SemanticClient for the given configuration.
func NewSemanticClient(httpClient *http.Client, cfg types.EnrichConfig) *SemanticClient {
	return &SemanticClient{HTTPClient: httpClient, Config: cfg}
}

// LookupAbstract fetches the abstract for a DOI. HTTP 200 yields Found
// or NotFound depending on the abstract field; 429 and 403 are
// rate-limit/auth failures and classify as Failed; any other non-200
// status is treated as not found.
func (c *SemanticClient) LookupAbstract(ctx context.Context, doi string) LookupResult {
	reqURL := fmt.Sprintf("%s/DOI:%s?fields=%s", semanticAPIBase, url.PathEscape(doi), semanticFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return LookupResult{Status: LookupFailed, Err: fmt.Errorf("creating request: %w", err)}
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}
	if c.Config.APIKey != "" {
		req.Header.Set("x-api-key", c.Config.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return LookupResult{Status: LookupFailed, Err: fmt.Errorf("Semantic Scholar API request: %w", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode.
	case http.StatusTooManyRequests, http.StatusForbidden:
		return LookupResult{
			Status: LookupFailed,
			Err:    fmt.Errorf("Semantic Scholar API rejected DOI %s with HTTP %d", doi, resp.StatusCode),
		}
	default:
		return LookupResult{Status: LookupNotFound}
	}

	var paper semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&paper); err != nil {
		return LookupResult{Status: LookupFailed, Err: fmt.Errorf("parsing Semantic Scholar response: %w", err)}
	}

	if paper.Abstract == "" {
		return LookupResult{Status: LookupNotFound}
	}
	return LookupResult{Status: LookupFound, Abstract: paper.Abstract}
}

// Semantic Scholar API JSON structure.
type semanticPaper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}
