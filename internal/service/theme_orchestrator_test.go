package service_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
	"liveeditor/internal/service"
)

func TestSwitch_FirstThemeAppliesDefaults(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	res, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, service.StateApplyingDefaults, res.Branch)
	assert.False(t, res.BackedUp)
	assert.False(t, res.BarrierTimedOut)
	assert.Equal(t, service.StateIdle, e.themes.State())
	assert.Equal(t,
		[]service.ThemeState{service.StateApplyingDefaults, service.StateSettling, service.StateIdle},
		themeStates(e.emitter))

	home := e.editor.Page("homepage")
	assert.Equal(t, []string{"hero", "cards", "text"}, ids(home))
	assert.Equal(t, []int{0, 1, 2}, positions(home))

	global := e.editor.Global()
	assert.Equal(t, "header1", global.Variants.Header)
	assert.Equal(t, "header1", global.Header[domain.VariantField])
	assert.Equal(t, "/coastal.svg", global.Header["logo"])

	sp, ok := e.static.Get("property-detail")
	require.True(t, ok, "static page store must be populated once writers acknowledged")
	assert.Equal(t, "Property", sp.Meta["en"].Title)

	doc, err := e.docs.LoadDocument(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.ActiveTheme)
	assert.Equal(t, domain.ShapeOrdered, doc.ComponentSettings["homepage"].Shape)
	assert.Equal(t, "footer1", doc.GlobalComponentsData.Footer[domain.VariantField])
}

func TestSwitch_SynthesizesStaticPageMeta(t *testing.T) {
	e := newEngine(t, 0)

	_, err := e.themes.Switch(context.Background(), 2)
	require.NoError(t, err)

	pages := e.editor.StaticPages()
	require.Contains(t, pages, "project-detail")
	meta := pages["project-detail"].Meta
	assert.Equal(t, domain.MetaDescriptor{Title: "Project Detail"}, meta["en"])
	assert.Equal(t, domain.MetaDescriptor{Title: "Project Detail", Description: "Proyecto"}, meta["es"])
}

// Switching 1 → 2 backs up theme 1; switching back restores it, but the
// header variant comes from theme 1's current defaults.
func TestSwitch_RestoreOverridesBackupVariant(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	_, err = e.components.MoveByID(ctx, "homepage", "text", 0)
	require.NoError(t, err)

	res, err := e.themes.Switch(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.BackedUp)
	assert.Equal(t, "Theme1Backup", res.BackupKey)
	assert.Equal(t, service.StateApplyingDefaults, res.Branch)
	assert.Equal(t, []string{"hero-2"}, ids(e.editor.Page("homepage")))
	assert.Empty(t, e.editor.Page("about"), "theme 1 pages must be cleared")

	updated := themeOne()
	updated.Global.Header.Variant = "header3"
	e.catalog.Put(updated)

	res, err = e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, service.StateRestoring, res.Branch)

	assert.Equal(t, []string{"text", "hero", "cards"}, ids(e.editor.Page("homepage")), "edits come back from the backup")
	global := e.editor.Global()
	assert.Equal(t, "header3", global.Variants.Header)
	assert.Equal(t, "header3", global.Header[domain.VariantField])
	assert.Equal(t, "/coastal.svg", global.Header["logo"], "payload comes from the backup")

	backups, err := e.backups.ListBackups(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, []string{"Theme1Backup", "Theme2Backup"}, backups)
}

func TestSwitch_OutgoingBackupIsReplaced(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	_, err = e.components.MoveByID(ctx, "homepage", "text", 0)
	require.NoError(t, err)
	_, err = e.themes.Switch(ctx, 2)
	require.NoError(t, err)

	_, err = e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	_, err = e.components.MoveByID(ctx, "homepage", "cards", 0)
	require.NoError(t, err)
	res, err := e.themes.Switch(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.BackedUp)

	snap, err := e.backups.GetBackup(ctx, tenant, "Theme1Backup")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []string{"cards", "text", "hero"}, ids(snap.Pages["homepage"].Nodes))
}

func TestSwitch_KeyedPageRoundTrip(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	seed := domain.NewTenantDocument(tenant)
	seed.ActiveTheme = 1
	seed.ComponentSettings["about"] = domain.Keyed([]domain.ComponentNode{
		node("a", domain.ComponentTypeText, "text1"),
		{ID: "b", Type: domain.ComponentTypeHero, VariantName: "hero1", Data: domain.HeroPayload{Title: "Team"}, Position: 1, Layout: domain.Layout{Row: 1}},
	})
	require.NoError(t, e.docs.SaveDocument(ctx, seed))
	e.editor.Load(seed)

	_, err := e.themes.Switch(ctx, 2)
	require.NoError(t, err)
	snap, err := e.backups.GetBackup(ctx, tenant, "Theme1Backup")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.ShapeKeyed, snap.Pages["about"].Shape)

	_, err = e.themes.Switch(ctx, 1)
	require.NoError(t, err)

	raw, err := e.docs.RawDocument(ctx, tenant)
	require.NoError(t, err)
	var stored struct {
		ComponentSettings map[string]json.RawMessage `json:"componentSettings"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	var about map[string]domain.ComponentNode
	require.NoError(t, json.Unmarshal(stored.ComponentSettings["about"], &about), "about must be written back as a keyed map")
	assert.Len(t, about, 2)
	assert.Equal(t, "Team", about["b"].Data.(domain.HeroPayload).Title)
	assert.Equal(t, 1, about["b"].Position)
}

func TestResetToDefaults_DeletesBackupAndSkipsRestore(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()

	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, e.components.Remove(ctx, "homepage", "cards"))
	_, err = e.themes.Switch(ctx, 2)
	require.NoError(t, err)
	_, err = e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"hero", "text"}, ids(e.editor.Page("homepage")))

	e.emitter.Events = nil
	res, err := e.themes.ResetToDefaults(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.BackupDeleted)
	assert.False(t, res.BackedUp)
	assert.Equal(t, service.StateApplyingDefaults, res.Branch)
	assert.NotContains(t, themeStates(e.emitter), service.StateBackingUp)
	assert.Equal(t, []string{"hero", "cards", "text"}, ids(e.editor.Page("homepage")))

	snap, err := e.backups.GetBackup(ctx, tenant, "Theme1Backup")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSwitch_UnknownThemeLeavesStateAlone(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()
	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	before := e.editor.Pages()

	_, err = e.themes.Switch(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUnknownTheme)
	assert.Equal(t, 1, e.editor.ActiveTheme())
	assert.Equal(t, before, e.editor.Pages())
	assert.Equal(t, service.StateIdle, e.themes.State())
}

func TestSwitch_BarrierTimeoutStillSettles(t *testing.T) {
	e := newEngine(t, 20*time.Millisecond)
	var delayed atomic.Int32
	service.SetWriterHook(e.themes, func(writer string) {
		if writer == "static-pages" {
			delayed.Add(1)
			time.Sleep(200 * time.Millisecond)
		}
	})

	res, err := e.themes.Switch(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, res.BarrierTimedOut)
	assert.Contains(t, res.Pending, "static-pages")
	assert.EqualValues(t, 1, delayed.Load())

	_, ok := e.static.Get("property-detail")
	assert.True(t, ok, "settling replays the pending writer")
	assert.Len(t, e.emitter.Named(service.EventBarrierTimedOut), 1)
	assert.Equal(t, service.StateIdle, e.themes.State())
}

func TestSwitch_LateWriterDoesNotOverwriteAfterTimeout(t *testing.T) {
	e := newEngine(t, 20*time.Millisecond)
	var woke atomic.Int32
	service.SetWriterHook(e.themes, func(string) {
		time.Sleep(200 * time.Millisecond)
		woke.Add(1)
	})

	res, err := e.themes.Switch(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, res.BarrierTimedOut)
	require.Equal(t, service.StateIdle, e.themes.State())

	sp, ok := e.static.Get("property-detail")
	require.True(t, ok)
	sp.APIEndpoints = map[string]string{"edited": "/after-switch"}
	e.static.Put(sp)
	e.editor.SetGlobalVariants(domain.GlobalVariants{Header: "header-edited", Footer: "footer-edited"})

	require.Eventually(t, func() bool { return woke.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	sp, ok = e.static.Get("property-detail")
	require.True(t, ok)
	assert.Equal(t, "/after-switch", sp.APIEndpoints["edited"])
	assert.Equal(t, "header-edited", e.editor.Global().Variants.Header)
	assert.Equal(t, "footer-edited", e.editor.Global().Variants.Footer)
}

func TestSwitch_SettlingReappliesCurrentStaticPage(t *testing.T) {
	e := newEngine(t, 0)
	e.editor.SetCurrentPage("property-detail")

	_, err := e.themes.Switch(context.Background(), 1)
	require.NoError(t, err)

	sp, ok := e.static.Get("property-detail")
	require.True(t, ok)
	assert.Equal(t, []int{0}, positions(sp.Components))
	assert.Equal(t, sp.Components, e.editor.StaticPages()["property-detail"].Components)
}

func TestSnapshot_NoActiveTheme(t *testing.T) {
	e := newEngine(t, 0)
	key, snap, err := e.snapshots.Capture(context.Background())
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Nil(t, snap)
}

func TestSnapshot_EmbedsVariantsAndSkipsEmptyPages(t *testing.T) {
	e := newEngine(t, 0)
	ctx := context.Background()
	_, err := e.themes.Switch(ctx, 1)
	require.NoError(t, err)
	e.editor.SetPage("blog", nil)

	key, snap, err := e.snapshots.Capture(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Theme1Backup", key)
	assert.NotContains(t, snap.Pages, "blog")
	assert.Contains(t, snap.Pages, "homepage")
	assert.Equal(t, "header1", snap.GlobalComponents.Header[domain.VariantField])
	assert.Equal(t, "footer1", snap.GlobalComponents.Footer[domain.VariantField])
	assert.Contains(t, snap.StaticPages, "property-detail")
}
