package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-engine/internal/index"
	"github.com/pdiddy/journal-engine/pkg/types"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the vector collection",
	Long: `Purge removes the persisted vector collection and its journal summary.
Journal JSON files in the data directory are untouched; run index to rebuild.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().String("index-dir", "data/index", "directory the collection is persisted under")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	indexDir, _ := cmd.Flags().GetString("index-dir")

	if err := index.Purge(types.IndexConfig{IndexDir: indexDir}); err != nil {
		return fmt.Errorf("purging collection: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Removed %s\n", indexDir)
	return nil
}
