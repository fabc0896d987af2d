package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/semdiff/pkg/annotator"
	"github.com/wonderfulspam/semdiff/pkg/config"
	"github.com/wonderfulspam/semdiff/pkg/mcpserver"
	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for agent integration.

The server communicates via stdio and exposes the compare_json tool, so
agents can compare JSON documents through a standardized protocol.`,
	RunE: runMCP,
}

var mcpConfigFile string

func init() {
	mcpCmd.Flags().StringVar(&mcpConfigFile, "config", ".semdiff.yml", "Path to the configuration file")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(mcpConfigFile)
	if err != nil {
		return err
	}

	var opts []mcpserver.Option
	if cfg.HasProvider() {
		embedder := semantic.NewHTTPEmbedder(cfg.Provider.Endpoint, cfg.Provider.APIKey, cfg.Provider.Model)

		scorerOpts := []semantic.ScorerOption{semantic.WithProfile(cfg.Similarity.Profile)}
		if cfg.Cache.Enabled {
			cache, err := openCache(cfg)
			if err != nil {
				return err
			}
			scorerOpts = append(scorerOpts, semantic.WithCache(cache))
		}

		scorer, err := semantic.NewScorer(embedder, cfg.Similarity.Thresholds, scorerOpts...)
		if err != nil {
			return err
		}

		ann, err := annotator.New(scorer,
			annotator.WithWorkers(cfg.Annotator.Workers),
			annotator.WithTimeout(cfg.Timeout()))
		if err != nil {
			return err
		}
		opts = append(opts, mcpserver.WithAnnotator(ann))
	}

	server, err := mcpserver.NewServer(opts...)
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
