package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"liveeditor/internal/domain"
	"liveeditor/internal/service"
)

func (s *Server) registerCompositionTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages and static pages of the active theme"),
	), s.handleListPages)

	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the components of a page in order"),
		mcp.WithString("page", mcp.Description("Page name (defaults to the current page)")),
	), s.handleListComponents)

	// ── set_current_page ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_current_page",
		mcp.WithDescription("Set the page that drags and defaulted tools act on"),
		mcp.WithString("page", mcp.Description("Page name or static page slug"), mcp.Required()),
	), s.handleSetCurrentPage)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component to a new index. The index refers to the list after the component is taken out."),
		mcp.WithString("componentId", mcp.Description("ID of the component to move"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Destination index"), mcp.Required()),
		mcp.WithString("page", mcp.Description("Page name (defaults to the current page)")),
	), s.handleMoveComponent)

	// ── drag_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drag_component",
		mcp.WithDescription("Simulate a pointer drag on the current page: an existing component (componentId) or a palette item (componentType) dropped at pointerY"),
		mcp.WithString("componentId", mcp.Description("ID of an existing component to reorder")),
		mcp.WithString("componentType", mcp.Description("Type of a new palette component (hero, header, footer, cards, form, text)")),
		mcp.WithNumber("pointerY", mcp.Description("Vertical pointer position at drop"), mcp.Required()),
		mcp.WithString("zones", mcp.Description("Comma-separated zone keys (areaId:zoneName) under the pointer; a zone counts when its area component is on the page (default: root)")),
		mcp.WithString("targetComponentId", mcp.Description("Resolve against this component's midpoint instead of the whole zone")),
		mcp.WithString("data", mcp.Description("JSON payload for a palette component")),
		mcp.WithBoolean("cancel", mcp.Description("Abort the gesture instead of dropping")),
	), s.handleDragComponent)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Insert a new component at an index"),
		mcp.WithString("type", mcp.Description("Component type"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Insertion index (default: end)")),
		mcp.WithString("page", mcp.Description("Page name (defaults to the current page)")),
		mcp.WithString("zone", mcp.Description("Zone key, area:zone (default: root)")),
		mcp.WithString("variant", mcp.Description("Variant name (default: the theme's variant for this type)")),
		mcp.WithString("data", mcp.Description("JSON payload")),
	), s.handleAddComponent)

	// ── remove_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Remove a component from a page"),
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
		mcp.WithString("page", mcp.Description("Page name (defaults to the current page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveComponent)

	// ── engine_state ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("engine_state",
		mcp.WithDescription("Show the active theme, current page, theme state machine, zones and any drag in progress"),
	), s.handleEngineState)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"activeTheme": s.editor.ActiveTheme(),
		"currentPage": s.editor.CurrentPage(),
		"pages":       s.editor.PageNames(),
		"staticPages": s.static.Slugs(),
	})
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := s.resolvePage(req.GetArguments())
	if sp, ok := s.static.Get(page); ok {
		return jsonResult(sp.Components)
	}
	return jsonResult(s.components.List(page))
}

func (s *Server) handleSetCurrentPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := req.GetString("page", "")
	if page == "" {
		return nil, fmt.Errorf("page is required")
	}
	s.editor.SetCurrentPage(page)
	return textResult(fmt.Sprintf("Current page set to %s", page)), nil
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["componentId"].(string)
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	to, ok := args["to"].(float64)
	if !ok {
		return nil, fmt.Errorf("to is required")
	}
	list, err := s.components.MoveByID(ctx, s.resolvePage(args), id, int(to))
	if err != nil {
		return nil, fmt.Errorf("move component: %w", err)
	}
	return jsonResult(list)
}

func (s *Server) handleDragComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	op := domain.DragOperation{
		SourceID:          req.GetString("componentId", ""),
		TargetComponentID: req.GetString("targetComponentId", ""),
	}
	if t := req.GetString("componentType", ""); t != "" {
		data, err := parseData(args, "data")
		if err != nil {
			return nil, err
		}
		op.SourceID = domain.PaletteID(domain.ComponentType(t))
		op.Palette = &domain.PaletteItem{ComponentType: domain.ComponentType(t), Data: data}
	}
	if op.SourceID == "" {
		return nil, fmt.Errorf("componentId or componentType is required")
	}
	pointer := domain.Point{Y: getFloat(args, "pointerY", 0)}

	var hovered []domain.ZoneKey
	for _, z := range strings.Split(req.GetString("zones", ""), ",") {
		if z = strings.TrimSpace(z); z != "" {
			hovered = append(hovered, domain.ZoneKey(z))
		}
	}
	if len(hovered) == 0 {
		hovered = []domain.ZoneKey{domain.RootZone}
	}

	if _, err := s.drag.OnDragStart(op); err != nil {
		return nil, fmt.Errorf("drag start: %w", err)
	}
	if _, err := s.drag.OnDragMove(pointer, hovered...); err != nil {
		return nil, fmt.Errorf("drag move: %w", err)
	}
	op.Canceled = req.GetBool("cancel", false)
	out, err := s.drag.OnDragEnd(ctx, op, pointer)
	if err != nil {
		return nil, fmt.Errorf("drag end: %w", err)
	}
	return jsonResult(out)
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	t := req.GetString("type", "")
	if t == "" {
		return nil, fmt.Errorf("type is required")
	}
	data, err := parseData(args, "data")
	if err != nil {
		return nil, err
	}
	page := s.resolvePage(args)
	n, err := s.components.Add(ctx, service.AddRequest{
		Page:    page,
		Type:    domain.ComponentType(t),
		Index:   getInt(args, "index", len(s.components.List(page))),
		Zone:    domain.ZoneKey(req.GetString("zone", "")),
		Variant: req.GetString("variant", ""),
		Data:    data,
	})
	if err != nil {
		return nil, fmt.Errorf("add component: %w", err)
	}
	return jsonResult(n)
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["componentId"].(string)
	if id == "" {
		return nil, fmt.Errorf("componentId is required")
	}
	page := s.resolvePage(args)
	if err := s.components.Remove(ctx, page, id); err != nil {
		return nil, fmt.Errorf("remove component: %w", err)
	}
	return textResult(fmt.Sprintf("Removed %s from %s", id, page)), nil
}

func (s *Server) handleEngineState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engineState(ctx))
}
