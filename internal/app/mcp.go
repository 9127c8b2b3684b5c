package app

import (
	"context"

	mcpserver "liveeditor/internal/mcp"
)

// MCPServer builds the MCP server over this session's services.
func (a *App) MCPServer() *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Log:        a.log,
		Editor:     a.Editor,
		Static:     a.Static,
		Zones:      a.Zones,
		Components: a.Components,
		Drag:       a.Drag,
		Themes:     a.Themes,
		Sync:       a.Sync,
		Docs:       a.Docs,
		Backups:    a.Backups,
		Catalog:    a.Catalog,
	})
}

// ServeMCP runs the session as an MCP server on stdin/stdout until ctx is
// done or the client disconnects.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.MCPServer().ServeStdio() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
