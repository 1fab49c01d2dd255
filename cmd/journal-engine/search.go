package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-engine/internal/embed"
	"github.com/pdiddy/journal-engine/internal/index"
)

const defaultMaxResults = 10

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the vector collection",
	Long: `Search embeds the query with the same backend the collection was built
with and prints the nearest works, most similar first.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default 10)")
	searchCmd.Flags().String("data-dir", "data/journals", "directory of journal JSON files")
	searchCmd.Flags().String("index-dir", "data/index", "directory the collection is persisted under")
	searchCmd.Flags().String("collection", index.DefaultCollection, "collection name")
	searchCmd.Flags().String("embedder", "static", "embedding backend: static or ollama")
	searchCmd.Flags().String("ollama-host", embed.DefaultOllamaHost, "Ollama endpoint for the ollama embedder")
	searchCmd.Flags().String("ollama-model", embed.DefaultOllamaModel, "Ollama embedding model")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	query := strings.Join(args, " ")

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}

	cfg := indexConfigFromFlags(cmd)
	cfg.MaxResults = maxResults

	ix := index.New(cfg, embed.ForConfig(cfg))
	results, err := ix.Search(cmd.Context(), query, cfg.MaxResults)
	if err != nil {
		return fmt.Errorf("searching collection: %w", err)
	}

	printResults(os.Stdout, results)
	return nil
}

// printResults writes one numbered hit per result, with the journal,
// year, and DOI lines included when the metadata carries them.
func printResults(w io.Writer, results []index.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%2d. [%.3f] %s\n", i+1, r.Score, r.Title)
		if r.Journal != "" || r.Year != "" {
			fmt.Fprintf(w, "    %s (%s)\n", r.Journal, r.Year)
		}
		if r.DOI != "" {
			fmt.Fprintf(w, "    https://doi.org/%s\n", r.DOI)
		}
	}
}
