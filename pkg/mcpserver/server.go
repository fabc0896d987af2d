// Package mcpserver exposes the comparison engine over the Model Context
// Protocol so agents can diff JSON documents through a standard tool call.
package mcpserver

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wonderfulspam/semdiff/pkg/annotator"
)

// Server wraps the MCP server around the diff engine. Without an annotator
// it serves structural comparisons only.
type Server struct {
	mcp      *gomcp.Server
	annotate *annotator.Annotator
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithAnnotator enables semantic annotation of string changes.
func WithAnnotator(a *annotator.Annotator) Option {
	return func(s *Server) {
		s.annotate = a
	}
}

// NewServer creates an MCP server with the compare_json tool registered.
func NewServer(opts ...Option) (*Server, error) {
	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "semdiff",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{mcp: mcpServer}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
