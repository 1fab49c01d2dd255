// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/journal-engine/internal/ratelimit"
	"github.com/pdiddy/journal-engine/internal/store"
	"github.com/pdiddy/journal-engine/pkg/types"
)

func testEnricher(t *testing.T, ts *httptest.Server, dataDir string) *Enricher {
	t.Helper()

	origBase := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() { semanticAPIBase = origBase })

	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "journal-engine-test/0.1",
		},
		RateLimit:  100,
		RateWindow: time.Second,
		DataDir:    dataDir,
	}
	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	if err != nil {
		t.Fatal(err)
	}
	return New(NewSemanticClient(ts.Client(), cfg), limiter, cfg)
}

func writeJournal(t *testing.T, dir, name string, works []types.Work) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := store.Save(path, works); err != nil {
		t.Fatal(err)
	}
	return path
}

func work(id, doi string) types.Work {
	return types.Work{
		ID:    id,
		Title: "Title " + id,
		Metadata: types.Metadata{
			DOI:               doi,
			AbstractAvailable: types.AbstractUnknown,
		},
	}
}

func TestEnrichAddsAbstracts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"paperId": "p1", "title": "T", "abstract": "Recovered abstract."}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeJournal(t, dir, "2053-9517.json", []types.Work{work("w1", "10.1000/a")})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.AbstractsAdded != 1 {
		t.Errorf("AbstractsAdded = %d, want 1", stats.AbstractsAdded)
	}

	works, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if works[0].Abstract != "Recovered abstract." {
		t.Errorf("Abstract = %q", works[0].Abstract)
	}
	if works[0].Status() != types.AbstractFound {
		t.Errorf("Status = %q, want %q", works[0].Status(), types.AbstractFound)
	}
}

func TestEnrichIdempotentOnFullyEnrichedFile(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"paperId": "p1", "abstract": "A."}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeJournal(t, dir, "2053-9517.json", []types.Work{
		work("w1", "10.1000/a"),
		work("w2", "10.1000/b"),
	})

	e := testEnricher(t, ts, dir)
	if _, err := e.Enrich(context.Background(), io.Discard); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	firstRequests := requests
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Second pass: nothing left to do, no lookups, byte-identical file.
	if _, err := e.Enrich(context.Background(), io.Discard); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if requests != firstRequests {
		t.Errorf("second pass made %d extra requests", requests-firstRequests)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("second pass changed the file")
	}
}

func TestEnrichMarksUnavailableTerminally(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "paper not found"}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeJournal(t, dir, "2053-9517.json", []types.Work{work("w1", "10.1000/gone")})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.MarkedUnavailable != 1 {
		t.Errorf("MarkedUnavailable = %d, want 1", stats.MarkedUnavailable)
	}

	works, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if works[0].Status() != types.AbstractConfirmedAbsent {
		t.Errorf("Status = %q, want %q", works[0].Status(), types.AbstractConfirmedAbsent)
	}

	// The marked record must never be queried again.
	if _, err := e.Enrich(context.Background(), io.Discard); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if requests != 1 {
		t.Errorf("marked record re-queried: %d total requests, want 1", requests)
	}
}

func TestEnrichSkipsRecordsWithoutDOI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no lookup expected for DOI-less record")
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeJournal(t, dir, "2053-9517.json", []types.Work{work("w1", "")})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.MissingDOI != 1 {
		t.Errorf("MissingDOI = %d, want 1", stats.MissingDOI)
	}

	// Still unknown: retried on every run, never marked unavailable.
	works, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if works[0].Status() != types.AbstractUnknown {
		t.Errorf("Status = %q, want %q", works[0].Status(), types.AbstractUnknown)
	}
}

func TestEnrichRateLimitRejectionAborts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	dir := t.TempDir()
	writeJournal(t, dir, "2053-9517.json", []types.Work{
		work("w1", "10.1000/a"),
		work("w2", "10.1000/b"),
	})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err == nil {
		t.Fatal("expected error on rate-limit rejection")
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.AbstractsAdded != 0 {
		t.Errorf("AbstractsAdded = %d, want 0", stats.AbstractsAdded)
	}
}

func TestEnrichNetworkFailureKeepsCommittedProgress(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			fmt.Fprint(w, `{"paperId": "p1", "abstract": "First."}`)
			return
		}
		// Simulate a dead upstream by hijacking and dropping the
		// connection so the client sees a transport error.
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("server does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatal(err)
		}
		conn.Close()
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeJournal(t, dir, "2053-9517.json", []types.Work{
		work("w1", "10.1000/a"),
		work("w2", "10.1000/b"),
	})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if stats.AbstractsAdded != 1 {
		t.Errorf("AbstractsAdded = %d, want 1", stats.AbstractsAdded)
	}

	// The file on disk is a valid snapshot holding the first record's
	// committed enrichment.
	works, loadErr := store.Load(path)
	if loadErr != nil {
		t.Fatalf("file not a valid snapshot: %v", loadErr)
	}
	if works[0].Abstract != "First." {
		t.Errorf("works[0].Abstract = %q, want committed value", works[0].Abstract)
	}
	if works[1].Status() != types.AbstractUnknown {
		t.Errorf("works[1] should remain unknown, got %q", works[1].Status())
	}
}

func TestEnrichSkipsMalformedFilesAndContinues(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"paperId": "p1", "abstract": "Fine."}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0000-0000.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeJournal(t, dir, "2053-9517.json", []types.Work{work("w1", "10.1000/a")})

	e := testEnricher(t, ts, dir)
	stats, err := e.Enrich(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.AbstractsAdded != 1 {
		t.Errorf("AbstractsAdded = %d, want 1", stats.AbstractsAdded)
	}
}
