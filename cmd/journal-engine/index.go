// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-engine/internal/embed"
	"github.com/pdiddy/journal-engine/internal/index"
	"github.com/pdiddy/journal-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector collection from journal files",
	Long: `Index rebuilds the vector collection from scratch: the existing
collection is dropped, every work in the data directory is embedded and
inserted, and a per-journal summary is written alongside the collection.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("data-dir", "data/journals", "directory of journal JSON files")
	indexCmd.Flags().String("index-dir", "data/index", "directory the collection is persisted under")
	indexCmd.Flags().String("collection", index.DefaultCollection, "collection name")
	indexCmd.Flags().String("embedder", "static", "embedding backend: static or ollama")
	indexCmd.Flags().String("ollama-host", embed.DefaultOllamaHost, "Ollama endpoint for the ollama embedder")
	indexCmd.Flags().String("ollama-model", embed.DefaultOllamaModel, "Ollama embedding model")

	rootCmd.AddCommand(indexCmd)
}

func indexConfigFromFlags(cmd *cobra.Command) types.IndexConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	indexDir, _ := cmd.Flags().GetString("index-dir")
	collection, _ := cmd.Flags().GetString("collection")
	embedder, _ := cmd.Flags().GetString("embedder")
	ollamaHost, _ := cmd.Flags().GetString("ollama-host")
	ollamaModel, _ := cmd.Flags().GetString("ollama-model")

	return types.IndexConfig{
		DataDir:     dataDir,
		IndexDir:    indexDir,
		Collection:  collection,
		Embedder:    embedder,
		OllamaHost:  ollamaHost,
		OllamaModel: ollamaModel,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := indexConfigFromFlags(cmd)

	ix := index.New(cfg, embed.ForConfig(cfg))
	summary, err := ix.Generate(cmd.Context(), os.Stdout)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Indexed %d of %d works from %d journals (%d skipped)\n",
		summary.Indexed, summary.TotalWorks, summary.Journals, summary.Skipped)
	return nil
}
