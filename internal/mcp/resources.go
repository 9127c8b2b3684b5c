package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	documentURI     = "liveeditor://document"
	pagePrefix      = "liveeditor://page/"
	pageURITemplate = "liveeditor://page/{page}/components"
)

func (s *Server) registerResources() {
	// ── liveeditor://document ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		documentURI,
		"Tenant Document",
		mcp.WithResourceDescription("The persisted site document of the current tenant"),
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentResource)

	// ── liveeditor://page/{page}/components ────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURITemplate,
			"Components on a Page",
		),
		s.handlePageComponentsResource,
	)
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	doc, err := s.docs.LoadDocument(ctx, s.editor.TenantID())
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      documentURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	page := strings.TrimSuffix(strings.TrimPrefix(uri, pagePrefix), "/components")
	if page == "" || page == uri {
		return nil, fmt.Errorf("invalid page URI: %s", uri)
	}

	var v any = s.components.List(page)
	if sp, ok := s.static.Get(page); ok {
		v = sp
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal page: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
