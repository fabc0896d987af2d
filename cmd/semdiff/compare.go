package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/semdiff/pkg/aggregator"
	"github.com/wonderfulspam/semdiff/pkg/annotator"
	"github.com/wonderfulspam/semdiff/pkg/config"
	"github.com/wonderfulspam/semdiff/pkg/differ"
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
	"github.com/wonderfulspam/semdiff/pkg/renderer"
	"github.com/wonderfulspam/semdiff/pkg/semantic"
)

var compareCmd = &cobra.Command{
	Use:   "compare --old <old-file> --new <new-file>",
	Short: "Compare two JSON documents structurally and semantically",
	Long: `Performs a hybrid comparison between two JSON documents: a structural
tree diff plus, when an embedding provider is configured, a semantic verdict
for every changed string pair.`,
	RunE: runCompare,
}

var (
	oldFile          string
	newFile          string
	outputFile       string
	format           string
	configFile       string
	includeUnchanged bool
	noSemantic       bool
)

func init() {
	compareCmd.Flags().StringVar(&oldFile, "old", "", "Path to the old JSON document")
	compareCmd.Flags().StringVar(&newFile, "new", "", "Path to the new JSON document")
	compareCmd.Flags().StringVar(&outputFile, "output", "", "Output file for results (default: stdout)")
	compareCmd.Flags().StringVar(&format, "format", "json", "Output format (json, table, summary)")
	compareCmd.Flags().StringVar(&configFile, "config", ".semdiff.yml", "Path to the configuration file")
	compareCmd.Flags().BoolVar(&includeUnchanged, "include-unchanged", false, "Include unchanged leaves in the report")
	compareCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "Skip semantic scoring of string changes")

	compareCmd.MarkFlagRequired("old")
	compareCmd.MarkFlagRequired("new")

	rootCmd.AddCommand(compareCmd)
}

// CompareResult is the envelope the CLI emits: the report plus the compared
// file names and a report ID for correlation.
type CompareResult struct {
	ID     string             `json:"id"`
	Files  FileInfo           `json:"files"`
	Report *aggregator.Result `json:"report"`
}

type FileInfo struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	oldDoc, err := readDocument(oldFile)
	if err != nil {
		return err
	}
	newDoc, err := readDocument(newFile)
	if err != nil {
		return err
	}

	var records []differ.ChangeRecord
	if includeUnchanged {
		records = differ.DiffComplete(oldDoc, newDoc)
	} else {
		records = differ.Diff(oldDoc, newDoc)
	}

	annotated, errCount, err := annotate(cmd.Context(), cfg, records)
	if err != nil {
		return err
	}

	report := aggregator.Aggregate(annotated, errCount)
	result := CompareResult{
		ID:     uuid.NewString(),
		Files:  FileInfo{Old: oldFile, New: newFile},
		Report: report,
	}

	var output string
	switch format {
	case "json":
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result to JSON: %w", err)
		}
		output = string(b)
	default:
		output, err = renderer.Format(report, format)
		if err != nil {
			return err
		}
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Printf("Results written to %s\n", outputFile)
	} else {
		fmt.Println(output)
	}

	fmt.Fprintf(os.Stderr, "\n%s\n", report.Headline)

	return nil
}

func readDocument(path string) (jsontree.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("reading '%s': %w", path, err)
	}
	doc, err := jsontree.Decode(data)
	if err != nil {
		return jsontree.Value{}, fmt.Errorf("parsing '%s': %w", path, err)
	}
	return doc, nil
}

// annotate runs the semantic layer when a provider is configured and the
// caller has not opted out; otherwise records pass through structural-only.
func annotate(ctx context.Context, cfg *config.Config, records []differ.ChangeRecord) ([]annotator.Record, int, error) {
	if noSemantic || !cfg.HasProvider() {
		if !noSemantic {
			fmt.Fprintln(os.Stderr, "No embedding provider configured; running structural comparison only")
		}
		return annotator.Structural(records), 0, nil
	}

	embedder := semantic.NewHTTPEmbedder(cfg.Provider.Endpoint, cfg.Provider.APIKey, cfg.Provider.Model)

	opts := []semantic.ScorerOption{semantic.WithProfile(cfg.Similarity.Profile)}
	if cfg.Cache.Enabled {
		cache, err := openCache(cfg)
		if err != nil {
			return nil, 0, err
		}
		opts = append(opts, semantic.WithCache(cache))
	}

	scorer, err := semantic.NewScorer(embedder, cfg.Similarity.Thresholds, opts...)
	if err != nil {
		return nil, 0, err
	}

	ann, err := annotator.New(scorer,
		annotator.WithWorkers(cfg.Annotator.Workers),
		annotator.WithTimeout(cfg.Timeout()))
	if err != nil {
		return nil, 0, err
	}

	annotated, errCount := ann.Annotate(ctx, records)
	return annotated, errCount, nil
}

func openCache(cfg *config.Config) (semantic.Cache, error) {
	if cfg.Cache.Path == "" {
		return semantic.NewMemoryCache(), nil
	}
	cache, err := semantic.OpenSQLiteCache(cfg.Cache.Path, cfg.Provider.Model)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return cache, nil
}
