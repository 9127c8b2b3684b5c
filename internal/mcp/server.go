package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"liveeditor/internal/domain"
	"liveeditor/internal/service"
	"liveeditor/internal/state"
	"liveeditor/internal/zones"
)

// Server is the MCP server of the page editor. It exposes tools and
// resources so agents can rearrange pages and switch themes.
type Server struct {
	mcp *server.MCPServer
	log zerolog.Logger

	editor     *state.Editor
	static     *state.StaticPageStore
	zones      *zones.Registry
	components *service.ComponentService
	drag       *service.DragCoordinator
	themes     *service.ThemeOrchestrator
	sync       *service.Synchronizer
	docs       domain.DocumentStore
	backups    domain.BackupStore
	catalog    ThemeLister
}

// ThemeLister lists the loaded theme numbers.
type ThemeLister interface {
	Numbers() []int
}

// Deps holds everything the app layer passes to the MCP server.
type Deps struct {
	Log        zerolog.Logger
	Editor     *state.Editor
	Static     *state.StaticPageStore
	Zones      *zones.Registry
	Components *service.ComponentService
	Drag       *service.DragCoordinator
	Themes     *service.ThemeOrchestrator
	Sync       *service.Synchronizer
	Docs       domain.DocumentStore
	Backups    domain.BackupStore
	Catalog    ThemeLister
}

// New creates and configures the MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		log:        deps.Log.With().Str("component", "mcp").Logger(),
		editor:     deps.Editor,
		static:     deps.Static,
		zones:      deps.Zones,
		components: deps.Components,
		drag:       deps.Drag,
		themes:     deps.Themes,
		sync:       deps.Sync,
		docs:       deps.Docs,
		backups:    deps.Backups,
		catalog:    deps.Catalog,
	}

	s.mcp = server.NewMCPServer(
		"liveeditor-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCompositionTools()
	s.registerThemeTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer exposes the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// resolvePage returns the page from tool args or falls back to the current page.
func (s *Server) resolvePage(args map[string]any) string {
	if p, ok := args["page"].(string); ok && p != "" {
		return p
	}
	return s.editor.CurrentPage()
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// parseData decodes an optional JSON object argument.
func parseData(args map[string]any, key string) (map[string]any, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a JSON object", key)
	}
}

func (s *Server) engineState(ctx context.Context) map[string]any {
	st := map[string]any{
		"tenant":      s.editor.TenantID(),
		"activeTheme": s.editor.ActiveTheme(),
		"currentPage": s.editor.CurrentPage(),
		"themeState":  s.themes.State(),
		"version":     s.editor.Version(),
		"zones":       s.zones.Zones(),
		"staticPages": s.static.Slugs(),
	}
	if s.catalog != nil {
		st["themes"] = s.catalog.Numbers()
	}
	if op, ok := s.drag.Active(); ok {
		st["activeDrag"] = op
	}
	return st
}
