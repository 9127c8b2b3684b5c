package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveeditor/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "liveeditor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDocument(tenant string) *domain.TenantDocument {
	doc := domain.NewTenantDocument(tenant)
	doc.ActiveTheme = 1
	doc.ComponentSettings["homepage"] = domain.Ordered([]domain.ComponentNode{
		{ID: "h1", Type: domain.ComponentTypeHero, VariantName: "hero1", Data: domain.HeroPayload{Title: "Welcome"}},
		{ID: "c1", Type: domain.ComponentTypeCards, VariantName: "cards2", Position: 1, Layout: domain.Layout{Row: 1}},
	})
	doc.ComponentSettings["about"] = domain.Keyed([]domain.ComponentNode{
		{ID: "t1", Type: domain.ComponentTypeText, VariantName: "text1", Data: domain.TextPayload{Body: "Hi"}},
	})
	doc.GlobalComponentsData = domain.GlobalComponentsData{
		Header:   map[string]any{"logo": "/logo.svg"},
		Variants: domain.GlobalVariants{Header: "header1", Footer: "footer1"},
	}
	return doc
}

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liveeditor.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestDocumentStore_RoundTripPreservesShape(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(openTestDB(t))

	empty, err := store.LoadDocument(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, empty.ComponentSettings)

	require.NoError(t, store.SaveDocument(ctx, sampleDocument("tenant-a")))

	got, err := store.LoadDocument(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ActiveTheme)
	assert.Equal(t, domain.ShapeOrdered, got.ComponentSettings["homepage"].Shape)
	assert.Equal(t, domain.ShapeKeyed, got.ComponentSettings["about"].Shape)
	assert.Equal(t, "Welcome", got.ComponentSettings["homepage"].Nodes[0].Data.(domain.HeroPayload).Title)
	assert.Equal(t, "header1", got.GlobalComponentsData.Variants.Header)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestDocumentStore_UnchangedSaveKeepsBytes(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(openTestDB(t))

	require.NoError(t, store.SaveDocument(ctx, sampleDocument("tenant-a")))
	first, err := store.RawDocument(ctx, "tenant-a")
	require.NoError(t, err)
	before, err := store.LoadDocument(ctx, "tenant-a")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.SaveDocument(ctx, sampleDocument("tenant-a")))
	second, err := store.RawDocument(ctx, "tenant-a")
	require.NoError(t, err)
	after, err := store.LoadDocument(ctx, "tenant-a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "no-op save must not touch updated_at")
}

func snapshot(theme int) *domain.ThemeSnapshot {
	return &domain.ThemeSnapshot{
		Key:   domain.BackupKey(theme),
		Theme: theme,
		Pages: map[string]domain.PageComposition{
			"about": domain.Keyed([]domain.ComponentNode{{ID: "t1", Type: domain.ComponentTypeText}}),
		},
		GlobalComponents: domain.GlobalComponentsData{Variants: domain.GlobalVariants{Header: "header2"}},
		CapturedAt:       time.Now(),
	}
}

func exerciseBackupStore(t *testing.T, store domain.BackupStore) {
	ctx := context.Background()

	got, err := store.GetBackup(ctx, "tenant-a", domain.BackupKey(1))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.PutBackup(ctx, "tenant-a", snapshot(2)))
	require.NoError(t, store.PutBackup(ctx, "tenant-a", snapshot(1)))
	require.NoError(t, store.PutBackup(ctx, "tenant-b", snapshot(3)))

	keys, err := store.ListBackups(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Theme1Backup", "Theme2Backup"}, keys)

	got, err = store.GetBackup(ctx, "tenant-a", "Theme2Backup")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Theme)
	assert.Equal(t, domain.ShapeKeyed, got.Pages["about"].Shape)
	assert.Equal(t, "header2", got.GlobalComponents.Variants.Header)

	require.NoError(t, store.DeleteBackup(ctx, "tenant-a", "Theme2Backup"))
	got, err = store.GetBackup(ctx, "tenant-a", "Theme2Backup")
	require.NoError(t, err)
	assert.Nil(t, got)

	keys, err = store.ListBackups(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Theme1Backup"}, keys)
}

func TestBackupStore_SQLite(t *testing.T) {
	exerciseBackupStore(t, NewBackupStore(openTestDB(t)))
}

func TestBackupStore_Redis(t *testing.T) {
	s := miniredis.RunT(t)
	store, err := NewRedisBackupStore("redis://" + s.Addr())
	require.NoError(t, err)
	defer store.Close()

	exerciseBackupStore(t, store)
}

func TestBackupTheme(t *testing.T) {
	assert.Equal(t, 12, backupTheme("Theme12Backup"))
	assert.Equal(t, 0, backupTheme("garbage"))
}
