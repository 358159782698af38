package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/gitcat/core"
	"github.com/huangsam/gitcat/internal/contract"
	"github.com/huangsam/gitcat/internal/logging"
	"github.com/huangsam/gitcat/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	logger  *logging.Logger
}

func (h *toolHandler) handleGetFileContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}

	outcome, err := core.GetFileContent(ctx, cfg, h.mgr, h.logger, resolvePath(cfg, path))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolution failed: %v", err)), nil
	}

	row := schema.BatchRows([]schema.ResolutionOutcome{outcome}, true)[0]
	jsonData, _ := json.MarshalIndent(row, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFileContents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var paths []string
	for _, p := range request.GetStringSlice("paths", nil) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultError("paths must contain at least one file"), nil
	}

	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repository: %v", err)), nil
	}
	for i, p := range paths {
		paths[i] = resolvePath(cfg, p)
	}

	outcomes := core.GetFileContents(ctx, cfg, h.mgr, h.logger, paths)
	jsonData, _ := json.MarshalIndent(schema.BatchRows(outcomes, true), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// requestConfig applies the per-call rev and repo_path arguments to a copy of the base config.
func (h *toolHandler) requestConfig(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if r := request.GetString("rev", ""); r != "" {
		cfg.Revision = strings.TrimSpace(r)
	}
	if p := request.GetString("repo_path", ""); p != "" {
		absRepo, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		root, err := contract.RepoRoot(ctx, cfg.NewExecutor(), absRepo)
		if err != nil {
			return nil, fmt.Errorf("%q is not inside a Git repository: %w", p, err)
		}
		cfg.RepoPath = root
	}
	return cfg, nil
}

// resolvePath anchors relative paths at the configured repository.
func resolvePath(cfg *contract.Config, path string) string {
	if cfg.RepoPath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.FromSlash(cfg.RepoPath), path)
}
