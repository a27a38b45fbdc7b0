// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes design note tools for LLM integration via stdio transport, so an
// assistant can consult notes and pre-check changes without tripping the
// hook.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vordr/internal/ack"
	"github.com/starford/vordr/internal/conflict"
	"github.com/starford/vordr/internal/notestore"
)

// Server wraps the MCP server with design note tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store
}

// New creates a new MCP server with all tools registered.
func New(store *notestore.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Vordr",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("view_note",
		mcp.WithDescription("Read the design intent note attached to a source file, rendered with its acknowledgment requirement."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the source file the note describes")),
	), s.viewNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all design intent notes in this project with their purpose summaries."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("check_change",
		mcp.WithDescription("Run the conflict detector for a proposed change before writing it: "+
			"reports frozen-section violations (which would block the write), assumption violations, and breaking interface changes."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file being changed")),
		mcp.WithString("new_content", mcp.Required(), mcp.Description("The proposed new content")),
		mcp.WithString("old_content", mcp.Description("The current content, if the file already exists")),
	), s.checkChange)

	s.mcp.AddTool(mcp.NewTool("verify_acknowledgment",
		mcp.WithDescription("Check whether a message satisfies a note's acknowledgment requirement."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the noted file")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The message to verify")),
	), s.verifyAcknowledgment)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) viewNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := s.store.Load(path)
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note for: %s", path)), nil
	}
	return mcp.NewToolResultText(ack.Format(n, n.FilePath)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.store.List()
	if len(entries) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s", e.FilePath, e.DesignIntentSummary))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) checkChange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newContent, err := req.RequireString("new_content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	oldContent := ""
	if v, err := req.RequireString("old_content"); err == nil {
		oldContent = v
	}

	n := s.store.Load(path)
	if n == nil {
		return mcp.NewToolResultText("no note for this path; any change is allowed"), nil
	}

	rep := conflict.Detect(n, newContent, oldContent)
	out, _ := json.MarshalIndent(rep, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) verifyAcknowledgment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n := s.store.Load(path)
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note for: %s", path)), nil
	}

	ok, detail := ack.NewVerifier(n, n.FilePath).Verify(message)
	return mcp.NewToolResultText(fmt.Sprintf("acknowledged: %t (%s)", ok, detail)), nil
}
