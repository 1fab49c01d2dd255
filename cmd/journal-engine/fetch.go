package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-engine/internal/fetch"
	"github.com/pdiddy/journal-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultPageDelay = 500 * time.Millisecond
	defaultUserAgent = "journal-engine/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [issn...]",
	Short: "Download journal article metadata from CrossRef",
	Long: `Fetch downloads the complete article catalog for one or more journals
from the CrossRef works endpoint, following cursor pagination until the
catalog is exhausted. Each journal is written to <data-dir>/<issn>.json.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("page-delay", 0, "delay between page requests (default 500ms)")
	fetchCmd.Flags().Int("rows", 0, "rows per page (default 1000)")
	fetchCmd.Flags().String("email", "", "contact email for the CrossRef polite pool")
	fetchCmd.Flags().String("data-dir", "data/journals", "directory journal JSON files are written to")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more journal ISSNs")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	pageDelay, _ := cmd.Flags().GetDuration("page-delay")
	if pageDelay == 0 {
		pageDelay = defaultPageDelay
	}
	rows, _ := cmd.Flags().GetInt("rows")
	email, _ := cmd.Flags().GetString("email")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Email:       secretDefault("crossref-email", email),
		RowsPerPage: rows,
		PageDelay:   pageDelay,
		DataDir:     dataDir,
	}

	client := fetch.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	for _, issn := range args {
		path := filepath.Join(cfg.DataDir, issn+".json")
		if err := client.SaveToFile(cmd.Context(), issn, path, os.Stdout); err != nil {
			return fmt.Errorf("fetching %s: %w", issn, err)
		}
	}
	return nil
}
