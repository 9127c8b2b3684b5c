package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
	"liveeditor/internal/service"
	"liveeditor/internal/state"
	"liveeditor/internal/storage"
	"liveeditor/internal/surface"
	"liveeditor/internal/themes"
	"liveeditor/internal/zones"
)

// ─────────────────────────────────────────────────────────────
// Shared fixture: real SQLite stores, in-memory themes, stacked surface
// ─────────────────────────────────────────────────────────────

const tenant = "tenant-test"

type engine struct {
	editor     *state.Editor
	static     *state.StaticPageStore
	docs       *storage.DocumentStore
	backups    *storage.BackupStore
	catalog    *themes.Catalog
	emitter    *service.MockEmitter
	sync       *service.Synchronizer
	snapshots  *service.SnapshotService
	themes     *service.ThemeOrchestrator
	components *service.ComponentService
	zones      *zones.Registry
	surface    *surface.Stacked
	drag       *service.DragCoordinator
}

func newEngine(t *testing.T, settle time.Duration) *engine {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	e := &engine{
		editor:  state.NewEditor(tenant),
		static:  state.NewStaticPageStore(),
		docs:    storage.NewDocumentStore(db),
		backups: storage.NewBackupStore(db),
		catalog: themes.NewCatalog(themeOne(), themeTwo()),
		emitter: &service.MockEmitter{},
		zones:   zones.NewRegistry(),
	}
	e.surface = surface.NewStacked(e.editor, 100)
	e.sync = service.NewSynchronizer(e.editor, e.docs, e.catalog, e.emitter, log)
	e.snapshots = service.NewSnapshotService(e.editor, e.docs, log)
	e.themes = service.NewThemeOrchestrator(service.OrchestratorDeps{
		Editor:        e.editor,
		Static:        e.static,
		Themes:        e.catalog,
		Backups:       e.backups,
		Snapshots:     e.snapshots,
		Sync:          e.sync,
		Emitter:       e.emitter,
		Log:           log,
		SettleTimeout: settle,
	})
	e.components = service.NewComponentService(e.editor, e.catalog, e.sync, e.emitter, log)
	e.drag = service.NewDragCoordinator(service.DragDeps{
		Editor:     e.editor,
		Zones:      e.zones,
		Surface:    e.surface,
		Components: e.components,
		Sync:       e.sync,
		Emitter:    e.emitter,
		Log:        log,
	})
	return e
}

func node(id string, t domain.ComponentType, variant string) domain.ComponentNode {
	return domain.ComponentNode{ID: id, Type: t, VariantName: variant, Data: domain.NewPayload(t)}
}

func themeOne() *domain.ThemeDefinition {
	return &domain.ThemeDefinition{
		Number: 1,
		Name:   "Coastal",
		Pages: map[string]domain.ThemePage{
			"homepage": {Components: []domain.ComponentNode{
				{ID: "hero", Type: domain.ComponentTypeHero, VariantName: "hero1", Data: domain.HeroPayload{Title: "Find your home"}},
				node("cards", domain.ComponentTypeCards, "cards1"),
				node("text", domain.ComponentTypeText, "text1"),
			}},
			"about": {Components: []domain.ComponentNode{node("about-text", domain.ComponentTypeText, "text1")}},
		},
		Global: domain.GlobalDefaults{
			Header: domain.GlobalSlot{Variant: "header1", Variants: []string{"header1", "header3"}, Data: map[string]any{"logo": "/coastal.svg"}},
			Footer: domain.GlobalSlot{Variant: "footer1", Data: map[string]any{"copyright": "Coastal"}},
		},
		StaticPages: map[string]domain.StaticPageDefinition{
			"property-detail": {
				Title:        map[string]string{"en": "Property"},
				Components:   []domain.ComponentNode{node("gallery", domain.ComponentTypeCards, "cards3")},
				APIEndpoints: map[string]string{"property": "/api/properties/:id"},
			},
		},
	}
}

func themeTwo() *domain.ThemeDefinition {
	return &domain.ThemeDefinition{
		Number:  2,
		Name:    "Urban",
		Locales: []string{"en", "es"},
		Pages: map[string]domain.ThemePage{
			"homepage": {Shape: domain.ShapeKeyed, Components: []domain.ComponentNode{
				node("hero-2", domain.ComponentTypeHero, "hero2"),
			}},
		},
		Global: domain.GlobalDefaults{
			Header: domain.GlobalSlot{Variant: "header2"},
			Footer: domain.GlobalSlot{Variant: "footer2"},
		},
		StaticPages: map[string]domain.StaticPageDefinition{
			"project-detail": {
				Description: map[string]string{"es": "Proyecto"},
				Components:  []domain.ComponentNode{node("plan", domain.ComponentTypeText, "text2")},
			},
		},
	}
}

func ids(nodes []domain.ComponentNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func positions(nodes []domain.ComponentNode) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.Position
	}
	return out
}

func themeStates(m *service.MockEmitter) []service.ThemeState {
	var out []service.ThemeState
	for _, d := range m.Named(service.EventThemeState) {
		out = append(out, d.(service.StateChange).State)
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// Writer barrier tests
// ─────────────────────────────────────────────────────────────

func TestWriterBarrier_TryLock(t *testing.T) {
	var b service.ExportedWriterBarrier

	require.True(t, b.TryLock("static-pages"))
	assert.False(t, b.TryLock("static-pages"), "same writer cannot be in flight twice")
	require.True(t, b.TryLock("global-variants"))
	assert.Equal(t, []string{"global-variants", "static-pages"}, b.Pending())

	b.Unlock("static-pages")
	b.Unlock("global-variants")
	assert.Empty(t, b.Pending())
	assert.True(t, b.TryLock("static-pages"))
	b.Unlock("static-pages")
}

func TestWriterBarrier_WaitAll(t *testing.T) {
	var b service.ExportedWriterBarrier
	release := make(chan struct{})
	require.True(t, b.Go("slow", func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, b.WaitAll(ctx), "expected timeout while writer is pending")

	close(release)
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	assert.True(t, b.WaitAll(ctx2))
}

// ─────────────────────────────────────────────────────────────
// MockEmitter
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_Named(t *testing.T) {
	m := &service.MockEmitter{}
	m.Emit(context.Background(), "a", 1)
	m.Emit(context.Background(), "b", 2)
	m.Emit(context.Background(), "a", 3)
	assert.Equal(t, []any{1, 3}, m.Named("a"))
	assert.Len(t, m.Events, 3)
}

var errSaveFailed = errors.New("document store unavailable")

// failingDocs reads through to a real store and refuses every write.
type failingDocs struct {
	domain.DocumentStore
}

func (failingDocs) SaveDocument(context.Context, *domain.TenantDocument) error {
	return errSaveFailed
}
