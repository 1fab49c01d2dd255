// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-engine/internal/server"
	"github.com/pdiddy/journal-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control surface",
	Long: `Serve exposes the pipeline over HTTP for the web frontend: fetch,
enrich, index, and purge as POST endpoints, plus journal file listing and
download.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("timeout", 0, "upstream HTTP request timeout (default 60s)")
	serveCmd.Flags().String("data-dir", "data/journals", "directory of journal JSON files")
	serveCmd.Flags().String("index-dir", "data/index", "directory the collection is persisted under")
	serveCmd.Flags().String("embedder", "static", "embedding backend: static or ollama")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")
	indexDir, _ := cmd.Flags().GetString("index-dir")
	embedder, _ := cmd.Flags().GetString("embedder")

	cfg := types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			Email:   secretDefault("crossref-email", ""),
			DataDir: dataDir,
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			APIKey:  secretDefault("semantic-scholar-api-key", ""),
			DataDir: dataDir,
		},
		Index: types.IndexConfig{
			DataDir:  dataDir,
			IndexDir: indexDir,
			Embedder: embedder,
		},
		Server: types.ServerConfig{
			Addr: addr,
		},
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	srv := server.New(cfg, logger)
	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	return srv.ListenAndServe()
}
