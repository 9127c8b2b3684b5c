package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
	"liveeditor/internal/service"
)

func TestSync_IsIdempotent(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()
	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)

	_, err = e.sync.Sync(ctx)
	require.NoError(t, err)
	first, err := e.docs.RawDocument(ctx, tenant)
	require.NoError(t, err)
	doc1, err := e.docs.LoadDocument(ctx, tenant)
	require.NoError(t, err)

	_, err = e.sync.Sync(ctx)
	require.NoError(t, err)
	second, err := e.docs.RawDocument(ctx, tenant)
	require.NoError(t, err)
	doc2, err := e.docs.LoadDocument(ctx, tenant)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.True(t, doc1.UpdatedAt.Equal(doc2.UpdatedAt), "unchanged sync must not touch the row")
}

func TestSync_ShapeResolutionOrder(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	prev := domain.NewTenantDocument(tenant)
	prev.ActiveTheme = 2
	prev.ComponentSettings["homepage"] = domain.Ordered(nil)
	prev.ComponentSettings["legacy"] = domain.Keyed(nil)
	require.NoError(t, e.docs.SaveDocument(ctx, prev))

	e.editor.SetActiveTheme(2)
	e.editor.SetPage("homepage", []domain.ComponentNode{node("a", domain.ComponentTypeHero, "hero2")})
	e.editor.SetPage("legacy", []domain.ComponentNode{node("b", domain.ComponentTypeText, "text1")})
	e.editor.SetPage("hinted", []domain.ComponentNode{node("c", domain.ComponentTypeText, "text1")})
	e.editor.SetPage("fresh", []domain.ComponentNode{node("d", domain.ComponentTypeText, "text1")})

	doc, err := e.sync.SyncWithHints(ctx, map[string]domain.Shape{
		"homepage": domain.ShapeOrdered,
		"hinted":   domain.ShapeKeyed,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ShapeKeyed, doc.ComponentSettings["homepage"].Shape, "theme definition wins")
	assert.Equal(t, domain.ShapeKeyed, doc.ComponentSettings["hinted"].Shape)
	assert.Equal(t, domain.ShapeKeyed, doc.ComponentSettings["legacy"].Shape, "persisted shape is the fallback")
	assert.Equal(t, domain.ShapeOrdered, doc.ComponentSettings["fresh"].Shape)
	assert.Len(t, e.emitter.Named(service.EventDocumentSynced), 1)
}

func TestSync_EmbedsGlobalVariants(t *testing.T) {
	e := newEngine(t, 0)
	e.editor.SetGlobal(domain.GlobalComponentsData{
		Header:   map[string]any{"logo": "/x.svg", "variant": "stale"},
		Variants: domain.GlobalVariants{Header: "header2", Footer: "footer9"},
	})

	doc, err := e.sync.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "header2", doc.GlobalComponentsData.Header[domain.VariantField])
	assert.Equal(t, "footer9", doc.GlobalComponentsData.Footer[domain.VariantField])
	assert.Equal(t, "stale", e.editor.Global().Header[domain.VariantField], "sync never writes the editor")
}
