// Package state holds the in-memory containers an editor session works on.
// They replace process-wide singletons: each is constructed once per session
// and passed explicitly to the services that read or write it.
package state

import (
	"sort"
	"sync"

	"liveeditor/internal/domain"
)

// Editor is the live editing buffer. Page lists are always held in order;
// the persisted shape is the synchronizer's concern.
type Editor struct {
	mu          sync.RWMutex
	tenantID    string
	activeTheme int
	currentPage string
	pages       map[string][]domain.ComponentNode
	global      domain.GlobalComponentsData
	staticPages map[string]domain.StaticPage
	version     uint64
}

func NewEditor(tenantID string) *Editor {
	return &Editor{
		tenantID:    tenantID,
		currentPage: "homepage",
		pages:       make(map[string][]domain.ComponentNode),
		staticPages: make(map[string]domain.StaticPage),
	}
}

func (e *Editor) TenantID() string { return e.tenantID }

// Version increases on every write. Equal versions mean no mutation happened
// in between.
func (e *Editor) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

func (e *Editor) ActiveTheme() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeTheme
}

func (e *Editor) SetActiveTheme(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeTheme = n
	e.version++
}

func (e *Editor) CurrentPage() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentPage
}

func (e *Editor) SetCurrentPage(page string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentPage = page
}

// Page returns a copy of a page's component list.
func (e *Editor) Page(name string) []domain.ComponentNode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.CloneNodes(e.pages[name])
}

// SetPage replaces a page's component list with a copy of nodes.
func (e *Editor) SetPage(name string, nodes []domain.ComponentNode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages[name] = domain.CloneNodes(nodes)
	e.version++
}

func (e *Editor) DeletePage(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pages, name)
	e.version++
}

// PageNames returns the page names in sorted order.
func (e *Editor) PageNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.pages))
	for n := range e.pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pages returns a deep copy of every page list.
func (e *Editor) Pages() map[string][]domain.ComponentNode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string][]domain.ComponentNode, len(e.pages))
	for k, v := range e.pages {
		out[k] = domain.CloneNodes(v)
	}
	return out
}

func (e *Editor) Global() domain.GlobalComponentsData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.global.Clone()
}

func (e *Editor) SetGlobal(g domain.GlobalComponentsData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.global = g.Clone()
	e.version++
}

// SetGlobalVariants changes only the selected header/footer variants.
func (e *Editor) SetGlobalVariants(v domain.GlobalVariants) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.global.Variants = v
	e.version++
}

func (e *Editor) StaticPages() map[string]domain.StaticPage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.CloneStaticPages(e.staticPages)
}

func (e *Editor) SetStaticPages(pages map[string]domain.StaticPage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.staticPages = domain.CloneStaticPages(pages)
	e.version++
}

// Clear drops all composition state. The tenant, active theme and current
// page survive.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages = make(map[string][]domain.ComponentNode)
	e.global = domain.GlobalComponentsData{}
	e.staticPages = make(map[string]domain.StaticPage)
	e.version++
}

// IsEmpty reports whether there is any composition to snapshot.
func (e *Editor) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, nodes := range e.pages {
		if len(nodes) > 0 {
			return false
		}
	}
	return len(e.staticPages) == 0 && e.global.IsZero()
}

// Load seeds the buffer from a persisted document.
func (e *Editor) Load(doc *domain.TenantDocument) {
	if doc == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeTheme = doc.ActiveTheme
	e.pages = make(map[string][]domain.ComponentNode, len(doc.ComponentSettings))
	for name, c := range doc.ComponentSettings {
		e.pages[name] = domain.CloneNodes(c.Nodes)
	}
	e.global = doc.GlobalComponentsData.Clone()
	e.staticPages = domain.CloneStaticPages(doc.StaticPagesData)
	e.version++
}
