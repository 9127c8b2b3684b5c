package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
)

func textNode(id string, pos int) domain.ComponentNode {
	return domain.ComponentNode{ID: id, Type: domain.ComponentTypeText, Position: pos, Data: domain.TextPayload{Body: id}}
}

func TestEditor_PageIsCopied(t *testing.T) {
	e := NewEditor("acme")
	nodes := []domain.ComponentNode{textNode("a", 0)}
	e.SetPage("homepage", nodes)

	nodes[0].ID = "mutated"
	got := e.Page("homepage")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got[0].ID = "again"
	assert.Equal(t, "a", e.Page("homepage")[0].ID)
}

func TestEditor_VersionTracksWrites(t *testing.T) {
	e := NewEditor("acme")
	v := e.Version()

	e.SetCurrentPage("about")
	assert.Equal(t, v, e.Version(), "navigation is not a mutation")

	e.SetActiveTheme(2)
	assert.Greater(t, e.Version(), v)
}

func TestEditor_ClearKeepsSession(t *testing.T) {
	e := NewEditor("acme")
	assert.True(t, e.IsEmpty())
	assert.Equal(t, "homepage", e.CurrentPage())

	e.SetActiveTheme(2)
	e.SetPage("homepage", []domain.ComponentNode{textNode("a", 0)})
	e.SetGlobalVariants(domain.GlobalVariants{Header: "header1"})
	assert.False(t, e.IsEmpty())

	e.Clear()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, 2, e.ActiveTheme())
	assert.Empty(t, e.PageNames())
}

func TestEditor_Load(t *testing.T) {
	doc := domain.NewTenantDocument("acme")
	doc.ActiveTheme = 3
	doc.ComponentSettings["b"] = domain.Keyed([]domain.ComponentNode{textNode("x", 0)})
	doc.ComponentSettings["a"] = domain.Ordered(nil)
	doc.StaticPagesData["property"] = domain.StaticPage{Slug: "property"}

	e := NewEditor("acme")
	e.Load(doc)
	e.Load(nil)

	assert.Equal(t, 3, e.ActiveTheme())
	assert.Equal(t, []string{"a", "b"}, e.PageNames())
	assert.Len(t, e.Page("b"), 1)
	assert.Contains(t, e.StaticPages(), "property")
}

func TestStaticPageStore(t *testing.T) {
	s := NewStaticPageStore()
	s.Put(domain.StaticPage{Slug: "project", Components: []domain.ComponentNode{textNode("a", 0)}})
	s.Put(domain.StaticPage{Slug: "property"})
	assert.Equal(t, []string{"project", "property"}, s.Slugs())

	p, ok := s.Get("project")
	require.True(t, ok)
	p.Components[0].ID = "changed"
	p, _ = s.Get("project")
	assert.Equal(t, "a", p.Components[0].ID)

	s.Replace(map[string]domain.StaticPage{"other": {Slug: "other"}})
	assert.Equal(t, []string{"other"}, s.Slugs())

	s.Clear()
	_, ok = s.Get("other")
	assert.False(t, ok)
}
