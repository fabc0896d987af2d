// Package renderer turns a layered diff report into output a human or a
// downstream tool consumes.
package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wonderfulspam/semdiff/pkg/aggregator"
	"github.com/wonderfulspam/semdiff/pkg/annotator"
)

// Format renders a report in the requested format: json, table, or summary.
func Format(result *aggregator.Result, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling result to JSON: %w", err)
		}
		return string(out), nil
	case "table":
		return formatAsTable(result), nil
	case "summary":
		return formatSummary(result), nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}

func formatAsTable(result *aggregator.Result) string {
	var sb strings.Builder
	sb.WriteString("JSON Comparison Report\n")
	sb.WriteString("======================\n\n")
	sb.WriteString(fmt.Sprintf("Summary: %s\n\n", result.Headline))

	if !result.HasChanges {
		return sb.String()
	}

	sb.WriteString("Changes:\n")
	sb.WriteString("--------\n")
	for _, rec := range result.Records {
		sb.WriteString(fmt.Sprintf("  [%s] %s%s\n", string(rec.Kind), rec.Path.String(), describeVerdict(rec)))
	}
	sb.WriteString("\n")
	sb.WriteString(formatSummary(result))

	return sb.String()
}

func describeVerdict(rec annotator.Record) string {
	if rec.Semantic == nil {
		return ""
	}
	return fmt.Sprintf(" (semantic: %s, similarity %.2f)", string(rec.Semantic.Classification), rec.Semantic.Similarity)
}

func formatSummary(result *aggregator.Result) string {
	s := result.Summary
	var sb strings.Builder
	sb.WriteString("Counts:\n")
	sb.WriteString(fmt.Sprintf("  Added:                    %d\n", s.Added))
	sb.WriteString(fmt.Sprintf("  Removed:                  %d\n", s.Removed))
	sb.WriteString(fmt.Sprintf("  Type changed:             %d\n", s.TypeChanged))
	sb.WriteString(fmt.Sprintf("  Value changed:            %d\n", s.ValueChangedStructural))
	sb.WriteString(fmt.Sprintf("  Reworded (same meaning):  %d\n", s.ValueChangedParaphrase))
	sb.WriteString(fmt.Sprintf("  Unchanged:                %d\n", s.Unchanged))
	sb.WriteString(fmt.Sprintf("  Scoring errors:           %d\n", s.ErrorCount))
	sb.WriteString(fmt.Sprintf("  Meaningful changes:       %d\n", s.Meaningful))
	return sb.String()
}
