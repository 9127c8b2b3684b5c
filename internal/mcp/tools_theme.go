package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerThemeTools() {
	// ── switch_theme ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("switch_theme",
		mcp.WithDescription("Switch to a theme. The current theme is backed up; the target is restored from its backup or built from its defaults."),
		mcp.WithNumber("theme", mcp.Description("Theme number"), mcp.Required()),
	), s.handleSwitchTheme)

	// ── reset_theme ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reset_theme",
		mcp.WithDescription("Reset a theme to its factory defaults and delete its backup"),
		mcp.WithNumber("theme", mcp.Description("Theme number"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleResetTheme)

	// ── list_backups ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_backups",
		mcp.WithDescription("List stored theme backups"),
	), s.handleListBackups)

	// ── sync_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("sync_document",
		mcp.WithDescription("Propagate the live composition into the tenant document"),
	), s.handleSyncDocument)
}

func (s *Server) themeArg(req mcp.CallToolRequest) (int, error) {
	n := req.GetInt("theme", 0)
	if n <= 0 {
		return 0, fmt.Errorf("theme must be a positive number")
	}
	return n, nil
}

func (s *Server) handleSwitchTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.themeArg(req)
	if err != nil {
		return nil, err
	}
	res, err := s.themes.Switch(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("switch theme: %w", err)
	}
	return jsonResult(res)
}

func (s *Server) handleResetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.themeArg(req)
	if err != nil {
		return nil, err
	}
	res, err := s.themes.ResetToDefaults(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("reset theme: %w", err)
	}
	return jsonResult(res)
}

func (s *Server) handleListBackups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := s.backups.ListBackups(ctx, s.editor.TenantID())
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return jsonResult(keys)
}

func (s *Server) handleSyncDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.sync.Sync(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync document: %w", err)
	}
	return jsonResult(doc)
}
