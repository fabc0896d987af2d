package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wonderfulspam/semdiff/pkg/aggregator"
	"github.com/wonderfulspam/semdiff/pkg/annotator"
	"github.com/wonderfulspam/semdiff/pkg/differ"
	"github.com/wonderfulspam/semdiff/pkg/jsontree"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "compare_json",
		Description: "Compare two JSON documents structurally and semantically. Returns a layered diff report that separates meaningful changes from rewordings of the same meaning.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"old": {"type": "string", "description": "The old JSON document."},
				"new": {"type": "string", "description": "The new JSON document."},
				"include_unchanged": {"type": "boolean", "description": "Include unchanged leaves in the report (default false)."},
				"semantic": {"type": "boolean", "description": "Score string changes semantically when a provider is configured (default true)."}
			},
			"required": ["old", "new"]
		}`),
	}, s.handleCompareJSON)
}

func (s *Server) handleCompareJSON(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Old              string `json:"old"`
		New              string `json:"new"`
		IncludeUnchanged bool   `json:"include_unchanged"`
		Semantic         *bool  `json:"semantic"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Old == "" || args.New == "" {
		return toolError("both old and new documents are required"), nil
	}

	oldDoc, err := jsontree.Decode([]byte(args.Old))
	if err != nil {
		return toolError("old document: %v", err), nil
	}
	newDoc, err := jsontree.Decode([]byte(args.New))
	if err != nil {
		return toolError("new document: %v", err), nil
	}

	var records []differ.ChangeRecord
	if args.IncludeUnchanged {
		records = differ.DiffComplete(oldDoc, newDoc)
	} else {
		records = differ.Diff(oldDoc, newDoc)
	}

	wantSemantic := args.Semantic == nil || *args.Semantic
	var annotated []annotator.Record
	var errCount int
	if wantSemantic && s.annotate != nil {
		annotated, errCount = s.annotate.Annotate(ctx, records)
	} else {
		annotated = annotator.Structural(records)
	}

	result := aggregator.Aggregate(annotated, errCount)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return toolError("failed to serialize report: %v", err), nil
	}

	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(out)}},
	}, nil
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
