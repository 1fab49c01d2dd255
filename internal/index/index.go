// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/journal-engine/internal/embed"
	"github.com/pdiddy/journal-engine/internal/store"
	"github.com/pdiddy/journal-engine/pkg/types"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "academic_papers"

// Summary holds counts from a collection rebuild.
type Summary struct {
	Journals   int `json:"journals"`
	TotalWorks int `json:"total_papers"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
}

// JournalSummary is one entry of the journal_summary.json side artifact.
type JournalSummary struct {
	Title        string `json:"title"`
	ArticleCount int    `json:"article_count"`
}

// Indexer rebuilds the vector collection from a directory of journal files.
type Indexer struct {
	Config   types.IndexConfig
	Embedder embed.Embedder
}

// New returns an Indexer using the given embedder.
func New(cfg types.IndexConfig, embedder embed.Embedder) *Indexer {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	return &Indexer{Config: cfg, Embedder: embedder}
}

// Generate rebuilds the collection from scratch: any prior collection of
// the same name is destroyed, a journal summary side artifact is
// written, and every record from every journal file is embedded and
// inserted keyed by its stable ID. Records without an ID, and records
// whose embedding or insertion fails, are logged and skipped; they never
// abort the batch.
func (ix *Indexer) Generate(ctx context.Context, w io.Writer) (Summary, error) {
	var summary Summary

	files, err := store.ListJournalFiles(ix.Config.DataDir)
	if err != nil {
		return summary, err
	}
	summary.Journals = len(files)
	fmt.Fprintf(w, "found %d journal file(s) in %s\n", len(files), ix.Config.DataDir)

	if err := os.MkdirAll(ix.Config.IndexDir, 0o755); err != nil {
		return summary, fmt.Errorf("creating index directory: %w", err)
	}
	if err := ix.writeJournalSummary(files, w); err != nil {
		return summary, err
	}

	coll, err := Create(ix.Config.IndexDir, ix.Config.Collection)
	if err != nil {
		return summary, err
	}
	defer coll.Close()

	for _, name := range files {
		works, err := store.Load(filepath.Join(ix.Config.DataDir, name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			continue
		}
		summary.TotalWorks += len(works)

		for i := range works {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			if works[i].ID == "" {
				fmt.Fprintf(w, "skipped record %d in %s: no id\n", i, name)
				summary.Skipped++
				continue
			}

			vector, err := ix.Embedder.Embed(ctx, works[i].Document())
			if err != nil {
				fmt.Fprintf(w, "skipped %s: embedding failed: %v\n", works[i].ID, err)
				summary.Skipped++
				continue
			}
			if err := coll.Add(ctx, works[i], vector); err != nil {
				fmt.Fprintf(w, "skipped %s: %v\n", works[i].ID, err)
				summary.Skipped++
				continue
			}
			summary.Indexed++

			if summary.Indexed%100 == 0 {
				fmt.Fprintf(w, "indexed %d works...\n", summary.Indexed)
			}
		}
	}

	if err := coll.Save(); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\ncollection %q rebuilt: %d indexed, %d skipped (of %d works in %d journals)\n",
		ix.Config.Collection, summary.Indexed, summary.Skipped, summary.TotalWorks, summary.Journals)
	return summary, nil
}

// writeJournalSummary derives the issn -> {title, count} side artifact.
// The journal title comes from the first record's container title.
func (ix *Indexer) writeJournalSummary(files []string, w io.Writer) error {
	summary := make(map[string]JournalSummary, len(files))

	for _, name := range files {
		issn := strings.TrimSuffix(name, filepath.Ext(name))
		works, err := store.Load(filepath.Join(ix.Config.DataDir, name))
		if err != nil {
			fmt.Fprintf(w, "summary: failed to read %s: %v\n", name, err)
			summary[issn] = JournalSummary{Title: "Unknown"}
			continue
		}

		title := "Unknown"
		if len(works) > 0 && works[0].Metadata.ContainerTitle != "" {
			title = works[0].Metadata.ContainerTitle
		}
		summary[issn] = JournalSummary{Title: title, ArticleCount: len(works)}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding journal summary: %w", err)
	}
	path := filepath.Join(ix.Config.IndexDir, summaryFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing journal summary: %w", err)
	}
	fmt.Fprintf(w, "journal summary saved to %s\n", path)
	return nil
}

// Search opens the persisted collection and returns the k works nearest
// to the query text.
func (ix *Indexer) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = ix.Config.MaxResults
	}
	if k <= 0 {
		k = 10
	}

	coll, err := Open(ix.Config.IndexDir)
	if err != nil {
		return nil, err
	}
	defer coll.Close()

	vector, err := ix.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return coll.Search(ctx, vector, k)
}

// Purge removes the whole collection directory: vectors, metadata
// database, manifest, and journal summary.
func Purge(cfg types.IndexConfig) error {
	if cfg.IndexDir == "" {
		return fmt.Errorf("no index directory configured")
	}
	if err := os.RemoveAll(cfg.IndexDir); err != nil {
		return fmt.Errorf("purging collection: %w", err)
	}
	return nil
}
