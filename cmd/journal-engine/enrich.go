// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/journal-engine/internal/enrich"
	"github.com/pdiddy/journal-engine/internal/ratelimit"
	"github.com/pdiddy/journal-engine/pkg/types"
)

const (
	defaultRateLimit  = 1
	defaultRateWindow = 1 * time.Second
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add missing abstracts from Semantic Scholar",
	Long: `Enrich scans every journal file in the data directory and looks up
missing abstracts by DOI on the Semantic Scholar paper endpoint. Records the
service has no abstract for are marked so later passes skip them. Each file
is rewritten after every lookup, so an interrupted pass loses at most the
in-flight record.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	enrichCmd.Flags().Int("rate-limit", 0, "lookups allowed per rate window (default 1)")
	enrichCmd.Flags().Duration("rate-window", 0, "rolling rate-limit window (default 1s)")
	enrichCmd.Flags().String("api-key", "", "Semantic Scholar API key")
	enrichCmd.Flags().String("data-dir", "data/journals", "directory of journal JSON files")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	if rateLimit == 0 {
		rateLimit = defaultRateLimit
	}
	rateWindow, _ := cmd.Flags().GetDuration("rate-window")
	if rateWindow == 0 {
		rateWindow = defaultRateWindow
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	cfg := types.EnrichConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIKey:     secretDefault("semantic-scholar-api-key", apiKey),
		RateLimit:  rateLimit,
		RateWindow: rateWindow,
		DataDir:    dataDir,
	}

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	if err != nil {
		return err
	}

	client := enrich.NewSemanticClient(&http.Client{Timeout: cfg.Timeout}, cfg)
	enricher := enrich.New(client, limiter, cfg)

	stats, err := enricher.Enrich(cmd.Context(), os.Stdout)
	if err != nil {
		return fmt.Errorf("enrichment aborted: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Processed %d works across %d files: %d abstracts added, %d marked unavailable, %d missing DOI\n",
		stats.TotalWorks, stats.TotalFiles, stats.AbstractsAdded, stats.MarkedUnavailable, stats.MissingDOI)
	return nil
}
