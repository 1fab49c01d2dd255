// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-engine/internal/store"
	"github.com/pdiddy/journal-engine/pkg/types"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()
	cfg := types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{Timeout: time.Second, UserAgent: "journal-engine-test/0.1"},
			DataDir:    dataDir,
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{Timeout: time.Second},
			RateLimit:  100,
			RateWindow: time.Second,
			DataDir:    dataDir,
		},
		Index: types.IndexConfig{
			DataDir:  dataDir,
			IndexDir: filepath.Join(t.TempDir(), "collection"),
		},
	}
	return New(cfg, zap.NewNop()), dataDir
}

func seedJournal(t *testing.T, dataDir string) {
	t.Helper()
	works := []types.Work{
		{
			ID:       "id-1",
			Title:    "Seeded work",
			Abstract: "Known abstract.",
			Metadata: types.Metadata{
				DOI:               "10.1000/seed",
				ContainerTitle:    "Big Data & Society",
				AbstractAvailable: types.AbstractFound,
			},
		},
	}
	require.NoError(t, store.Save(filepath.Join(dataDir, "2053-9517.json"), works))
}

func TestFetchRejectsMissingISSN(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/fetch", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "ISSN")
}

func TestEnrichEndpointReturnsStats(t *testing.T) {
	s, dataDir := testServer(t)
	seedJournal(t, dataDir)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	// Every record already enriched: the pass makes no lookups.
	resp, err := http.Post(ts.URL+"/api/enrich", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body enrichResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "data enrichment complete", body.Message)
	assert.Equal(t, 1, body.Stats.TotalFiles)
	assert.Equal(t, 1, body.Stats.TotalWorks)
	assert.Equal(t, 1, body.Stats.WithAbstracts)
	assert.Zero(t, body.Stats.AbstractsAdded)
}

func TestIndexAndPurgeEndpoints(t *testing.T) {
	s, dataDir := testServer(t)
	seedJournal(t, dataDir)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/index", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body indexResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Summary.Indexed)

	purgeResp, err := http.Post(ts.URL+"/api/purge", "application/json", nil)
	require.NoError(t, err)
	defer purgeResp.Body.Close()
	assert.Equal(t, http.StatusOK, purgeResp.StatusCode)
}

func TestListAndDownloadFiles(t *testing.T) {
	s, dataDir := testServer(t)
	seedJournal(t, dataDir)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/files")
	require.NoError(t, err)
	defer resp.Body.Close()

	var listing map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Equal(t, []string{"2053-9517.json"}, listing["files"])

	dl, err := http.Get(ts.URL + "/api/files/2053-9517.json")
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "2053-9517.json")
}

func TestDownloadRejectsTraversal(t *testing.T) {
	s, _ := testServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/files/..%2F..%2Fetc%2Fpasswd")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// failingTransport fails every request at the transport layer, keeping
// the test off the real network.
type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestFetchUpstreamFailureReturnsError(t *testing.T) {
	s, _ := testServer(t)
	s.client = &http.Client{Transport: failingTransport{}}
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/fetch", "application/json",
		bytes.NewBufferString(`{"issn": "0000-0000"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
