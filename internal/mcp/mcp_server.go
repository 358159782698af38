// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gitcat MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"gitcat Content Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
	}

	// --- 1. Tool: get_file_content ---
	s.AddTool(mcp.NewTool("get_file_content",
		mcp.WithDescription("Get the content of a file as Git sees it: staged, at a revision, or from history when deleted."),
		mcp.WithString("path", mcp.Description("Path to the file. Relative paths are resolved against repo_path."), mcp.Required()),
		mcp.WithString("rev", mcp.Description("Revision to read the file at (e.g., 'HEAD~1', 'v1.0.0'). Defaults to the staged version.")),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (discovered from the file if not specified).")),
	), h.handleGetFileContent)

	// --- 2. Tool: get_file_contents ---
	s.AddTool(mcp.NewTool("get_file_contents",
		mcp.WithDescription("Get the content of several files at once. Failures are reported per file."),
		mcp.WithArray("paths", mcp.Description("Paths to the files."), mcp.Required(), mcp.WithStringItems()),
		mcp.WithString("rev", mcp.Description("Revision to read the files at.")),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
	), h.handleGetFileContents)

	return s
}

// StartMCPServer starts the gitcat MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, logger *logging.Logger) error {
	s := NewMCPServer(baseCfg, mgr, logger)
	return server.ServeStdio(s)
}
