// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch pulls a journal's full works listing from the CrossRef
// API and writes it as a normalized JSON file.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/journal-engine/pkg/types"
)

// crossrefAPIBase is the CrossRef journals endpoint. Declared as a var
// so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/journals"

// initialCursor is the sentinel CrossRef expects for the first page of a
// deep-paged listing.
const initialCursor = "*"

const defaultRowsPerPage = 1000 // CrossRef's maximum items per page

// Client fetches journal works from CrossRef.
type Client struct {
	HTTPClient *http.Client
	Config     types.FetchConfig
}

// NewClient returns a Client for the given configuration.
func NewClient(httpClient *http.Client, cfg types.FetchConfig) *Client {
	return &Client{HTTPClient: httpClient, Config: cfg}
}

// userAgent builds the polite-use User-Agent, appending the configured
// mailto address when present.
func (c *Client) userAgent() string {
	ua := c.Config.UserAgent
	if ua == "" {
		ua = "journal-engine/0.1"
	}
	if c.Config.Email != "" {
		ua = fmt.Sprintf("%s (mailto:%s)", ua, c.Config.Email)
	}
	return ua
}

// fetchPage requests one page of works for issn at the given cursor.
func (c *Client) fetchPage(ctx context.Context, issn, cursor string) (*worksPage, error) {
	rows := c.Config.RowsPerPage
	if rows <= 0 {
		rows = defaultRowsPerPage
	}

	params := url.Values{
		"rows":   {fmt.Sprintf("%d", rows)},
		"cursor": {cursor},
	}
	reqURL := fmt.Sprintf("%s/%s/works?%s", crossrefAPIBase, url.PathEscape(issn), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d for journal %s", resp.StatusCode, issn)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return &cr.Message, nil
}

// transformWork converts one raw CrossRef item into a Work. The ID is
// generated here and never changes afterwards.
func transformWork(raw crossrefWork) types.Work {
	authors := make([]string, 0, len(raw.Author))
	for _, a := range raw.Author {
		authors = append(authors, strings.TrimSpace(a.Given+" "+a.Family))
	}

	var published []int
	if len(raw.PublishedPrint.DateParts) > 0 {
		published = raw.PublishedPrint.DateParts[0]
	}

	w := types.Work{
		ID:       uuid.NewString(),
		Title:    firstOrEmpty(raw.Title),
		Abstract: raw.Abstract,
		Metadata: types.Metadata{
			DOI:                 raw.DOI,
			Type:                raw.Type,
			Published:           published,
			Authors:             authors,
			URL:                 raw.URL,
			Publisher:           raw.Publisher,
			ContainerTitle:      firstOrEmpty(raw.ContainerTitle),
			Volume:              raw.Volume,
			Issue:               raw.Issue,
			Page:                raw.Page,
			Subject:             raw.Subject,
			Language:            raw.Language,
			ISSN:                raw.ISSN,
			ISBN:                raw.ISBN,
			ReferencesCount:     raw.ReferencesCount,
			IsReferencedByCount: raw.IsReferencedByCount,
			Score:               raw.Score,
		},
	}
	if w.Abstract != "" {
		w.Metadata.AbstractAvailable = types.AbstractFound
	} else {
		w.Metadata.AbstractAvailable = types.AbstractUnknown
	}
	return w
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message worksPage `json:"message"`
}

type worksPage struct {
	Items      []crossrefWork `json:"items"`
	NextCursor string         `json:"next-cursor"`
}

type crossrefWork struct {
	Title               []string         `json:"title"`
	Abstract            string           `json:"abstract"`
	DOI                 string           `json:"DOI"`
	Type                string           `json:"type"`
	PublishedPrint      crossrefDate     `json:"published-print"`
	Author              []crossrefAuthor `json:"author"`
	URL                 string           `json:"URL"`
	Publisher           string           `json:"publisher"`
	ContainerTitle      []string         `json:"container-title"`
	Volume              string           `json:"volume"`
	Issue               string           `json:"issue"`
	Page                string           `json:"page"`
	Subject             []string         `json:"subject"`
	Language            string           `json:"language"`
	ISSN                []string         `json:"ISSN"`
	ISBN                []string         `json:"ISBN"`
	ReferencesCount     int              `json:"references-count"`
	IsReferencedByCount int              `json:"is-referenced-by-count"`
	Score               float64          `json:"score"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}
