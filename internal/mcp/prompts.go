package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("compose_landing_page",
		mcp.WithPromptDescription("Guide through composing a landing page from palette components"),
		mcp.WithArgument("audience",
			mcp.ArgumentDescription("Who the page is for"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("try_theme",
		mcp.WithPromptDescription("Preview another theme without losing the current edits"),
		mcp.WithArgument("theme",
			mcp.ArgumentDescription("Theme number to try"),
			mcp.RequiredArgument(),
		),
	), s.handleTryThemePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	audience := req.Params.Arguments["audience"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Compose a landing page for: %s", audience),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Compose the homepage for %s. Follow these steps:

1. Use set_current_page with "homepage" and list_components to see what is there
2. Make sure a hero sits at the top; move it with move_component if needed
3. Add a cards component below the hero (add_component, type "cards") for featured listings
4. Finish with a form component for contact requests near the bottom
5. Call sync_document and read liveeditor://document to confirm the result

Prefer moving existing components over removing them.`, audience),
				},
			},
		},
	}, nil
}

func (s *Server) handleTryThemePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	theme := req.Params.Arguments["theme"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Try theme %s", theme),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Try theme %s:

1. Call engine_state and note the active theme
2. Call switch_theme with %s; the current theme is backed up automatically
3. Review the pages with list_pages and list_components
4. To go back, call switch_theme with the previous number; the backup is restored

Never call reset_theme unless the user asks to discard their edits.`, theme, theme),
				},
			},
		},
	}, nil
}
