package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonderfulspam/semdiff/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage semdiff configuration",
	Long:  `Manage semdiff configuration files, including initialization and validation.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Generate a default configuration file",
	Long: `Generate a default semdiff configuration file with all available
settings. If no file is specified, creates .semdiff.yml in the current
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Long:  `Validate a semdiff configuration file for correctness.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	outputFile := ".semdiff.yml"
	if len(args) > 0 {
		outputFile = args[0]
	}

	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("configuration file %s already exists", outputFile)
	}

	exampleConfig := `# Semdiff Configuration File
# Controls the embedding provider, similarity thresholds, and caching.

# Embedding provider. Leave the endpoint empty to run structural-only
# comparisons. Any OpenAI-compatible /v1/embeddings endpoint works,
# including local inference servers.
provider:
  endpoint: ""
  # api_key: ""
  model: all-MiniLM-L6-v2

# Similarity classification. Scores are normalized to [0,1].
#   >= identical  -> near-exact rewording
#   >= paraphrase -> meaning-preserving rewording
#   below         -> semantically different
similarity:
  profile: default
  thresholds:
    identical: 0.92
    paraphrase: 0.75

# Embedding cache. With an empty path the cache lives in memory for the
# duration of one run; set a path to persist vectors across runs.
cache:
  enabled: true
  # path: .semdiff-cache.db

# Semantic annotation concurrency. Each string pair is scored
# independently; a timed-out pair is reported as unknown instead of
# failing the comparison.
annotator:
  workers: 4
  timeout_seconds: 10

# Array element pairing. Only positional alignment is supported.
sequence_alignment: positional
`

	if err := os.WriteFile(outputFile, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nYou can now:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "1. Set provider.endpoint to enable semantic scoring\n")
	fmt.Fprintf(cmd.OutOrStdout(), "2. Use it with: semdiff compare --config=%s --old a.json --new b.json\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "3. Validate it with: semdiff config validate %s\n", outputFile)

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid!\n\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Summary:\n")
	if cfg.HasProvider() {
		fmt.Fprintf(cmd.OutOrStdout(), "  Provider: %s (model %s)\n", cfg.Provider.Endpoint, cfg.Provider.Model)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "  Provider: none (structural comparisons only)\n")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Threshold profile: %s (identical %.2f, paraphrase %.2f)\n",
		cfg.Similarity.Profile, cfg.Similarity.Thresholds.Identical, cfg.Similarity.Thresholds.Paraphrase)
	if cfg.Cache.Enabled {
		if cfg.Cache.Path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  Cache: persistent (%s)\n", cfg.Cache.Path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  Cache: in-memory\n")
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "  Cache: disabled\n")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Annotator: %d workers, %ds timeout\n",
		cfg.Annotator.Workers, cfg.Annotator.TimeoutSeconds)

	return nil
}
