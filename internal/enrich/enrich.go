// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/journal-engine/internal/ratelimit"
	"github.com/pdiddy/journal-engine/internal/store"
	"github.com/pdiddy/journal-engine/pkg/types"
)

// Stats summarizes an enrichment pass. Field names mirror the payload
// the control surface returns.
type Stats struct {
	TotalFiles        int `json:"total_files"`
	TotalWorks        int `json:"total_papers"`
	WithAbstracts     int `json:"papers_with_abstracts"`
	AbstractsAdded    int `json:"new_abstracts_added"`
	MarkedUnavailable int `json:"marked_unavailable"`
	MissingDOI        int `json:"missing_doi"`
	Errors            int `json:"errors"`
}

// Enricher runs abstract enrichment over a directory of journal files.
type Enricher struct {
	Client  *SemanticClient
	Limiter *ratelimit.Limiter
	Config  types.EnrichConfig
}

// New returns an Enricher using the given lookup client and limiter.
func New(client *SemanticClient, limiter *ratelimit.Limiter, cfg types.EnrichConfig) *Enricher {
	return &Enricher{Client: client, Limiter: limiter, Config: cfg}
}

// Enrich processes every journal file under the configured data
// directory. For each record with an unknown abstract and a DOI it
// queries the API under the rate limit; found abstracts are stored and
// the whole file is rewritten after every processed record, so the
// on-disk state is always a valid snapshot. Records whose lookup found
// no abstract are marked permanently unavailable. Records without a DOI
// are left untouched and counted.
//
// A transport-level failure aborts the pass and returns the statistics
// accumulated so far; everything already saved stays saved. Malformed
// files are counted as errors and skipped.
func (e *Enricher) Enrich(ctx context.Context, w io.Writer) (Stats, error) {
	var stats Stats

	files, err := store.ListJournalFiles(e.Config.DataDir)
	if err != nil {
		return stats, err
	}
	stats.TotalFiles = len(files)
	fmt.Fprintf(w, "found %d journal file(s) to process\n", len(files))

	for _, name := range files {
		path := filepath.Join(e.Config.DataDir, name)

		works, err := store.Load(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			stats.Errors++
			continue
		}

		stats.TotalWorks += len(works)
		for i := range works {
			if works[i].Status() == types.AbstractFound {
				stats.WithAbstracts++
			}
		}

		fmt.Fprintf(w, "processing %s (%d works)\n", name, len(works))

		if err := e.enrichFile(ctx, path, works, &stats, w); err != nil {
			return stats, err
		}
	}

	fmt.Fprintf(w, "\nenrichment complete: %d added, %d unavailable, %d missing DOI, %d errors\n",
		stats.AbstractsAdded, stats.MarkedUnavailable, stats.MissingDOI, stats.Errors)
	return stats, nil
}

// enrichFile runs the lookup loop over one journal file. The works
// slice is mutated in place and saved after each processed record.
func (e *Enricher) enrichFile(ctx context.Context, path string, works []types.Work, stats *Stats, w io.Writer) error {
	for i := range works {
		if !works[i].NeedsAbstract() {
			continue
		}

		doi := works[i].Metadata.DOI
		if doi == "" {
			// Unattempted, not confirmed unavailable: retried next run.
			stats.MissingDOI++
			continue
		}

		if err := e.Limiter.Acquire(ctx); err != nil {
			return err
		}

		result := e.Client.LookupAbstract(ctx, doi)
		switch result.Status {
		case LookupFound:
			works[i].SetAbstract(result.Abstract)
			stats.AbstractsAdded++
			stats.WithAbstracts++
			fmt.Fprintf(w, "  added abstract for %s\n", doi)
		case LookupNotFound:
			works[i].MarkAbstractUnavailable()
			stats.MarkedUnavailable++
			fmt.Fprintf(w, "  no abstract for %s\n", doi)
		case LookupFailed:
			stats.Errors++
			fmt.Fprintf(w, "  lookup failed for %s: %v\n", doi, result.Err)
			return fmt.Errorf("enriching %s: %w", filepath.Base(path), result.Err)
		}

		if err := store.Save(path, works); err != nil {
			stats.Errors++
			return err
		}
	}
	return nil
}
