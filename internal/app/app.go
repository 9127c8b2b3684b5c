// Package app wires storage, theme source and services into one editor
// session and runs its background jobs.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"liveeditor/internal/config"
	"liveeditor/internal/domain"
	"liveeditor/internal/service"
	"liveeditor/internal/state"
	"liveeditor/internal/storage"
	"liveeditor/internal/surface"
	"liveeditor/internal/themes"
	"liveeditor/internal/zones"
)

// rowHeight is the nominal section height of the headless surface.
const rowHeight = 120

// App is one editor session for one tenant.
type App struct {
	cfg config.Config
	log zerolog.Logger

	db      *storage.DB
	Docs    domain.DocumentStore
	Backups domain.BackupStore
	Catalog *themes.Catalog

	Editor  *state.Editor
	Static  *state.StaticPageStore
	Zones   *zones.Registry
	Surface *surface.Stacked

	Sync       *service.Synchronizer
	Snapshots  *service.SnapshotService
	Themes     *service.ThemeOrchestrator
	Components *service.ComponentService
	Drag       *service.DragCoordinator

	closers   []func(context.Context) error
	scheduler *cron.Cron
	watcher   *themes.Watcher
}

// New opens the configured stores, loads themes and the tenant document, and
// builds the services.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	a := &App{cfg: cfg, log: log}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	if err := a.openDocuments(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.openBackups(); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Catalog = themes.NewCatalog()
	if n, err := a.Catalog.LoadDir(cfg.ThemesDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.Close(ctx)
			return nil, fmt.Errorf("load themes: %w", err)
		}
		log.Warn().Str("dir", cfg.ThemesDir).Msg("themes directory missing, no themes loaded")
	} else {
		log.Info().Int("count", n).Str("dir", cfg.ThemesDir).Msg("themes loaded")
	}

	a.Editor = state.NewEditor(cfg.Tenant)
	a.Static = state.NewStaticPageStore()
	doc, err := a.Docs.LoadDocument(ctx, cfg.Tenant)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("load tenant document: %w", err)
	}
	a.Editor.Load(doc)
	a.Static.Replace(doc.StaticPagesData)

	emitter := logEmitter{log: log}
	a.Zones = zones.NewRegistry()
	a.Surface = surface.NewStacked(a.Editor, rowHeight)
	a.Sync = service.NewSynchronizer(a.Editor, a.Docs, a.Catalog, emitter, log)
	a.Snapshots = service.NewSnapshotService(a.Editor, a.Docs, log)
	a.Themes = service.NewThemeOrchestrator(service.OrchestratorDeps{
		Editor:        a.Editor,
		Static:        a.Static,
		Themes:        a.Catalog,
		Backups:       a.Backups,
		Snapshots:     a.Snapshots,
		Sync:          a.Sync,
		Emitter:       emitter,
		Log:           log,
		SettleTimeout: cfg.SettleTimeout,
	})
	a.Components = service.NewComponentService(a.Editor, a.Catalog, a.Sync, emitter, log)
	a.Drag = service.NewDragCoordinator(service.DragDeps{
		Editor:     a.Editor,
		Zones:      a.Zones,
		Surface:    a.Surface,
		Components: a.Components,
		Sync:       a.Sync,
		Emitter:    emitter,
		Log:        log,
	})
	return a, nil
}

func (a *App) openDocuments(ctx context.Context) error {
	switch a.cfg.DocumentBackend {
	case config.BackendSQLite, "":
		a.Docs = storage.NewDocumentStore(a.db)
	case config.BackendMongo:
		store, err := storage.NewMongoDocumentStore(ctx, a.cfg.MongoURI, a.cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("open mongo documents: %w", err)
		}
		a.Docs = store
		a.closers = append(a.closers, store.Close)
	default:
		return fmt.Errorf("unknown document backend %q", a.cfg.DocumentBackend)
	}
	return nil
}

func (a *App) openBackups() error {
	switch a.cfg.BackupBackend {
	case config.BackendSQLite, "":
		a.Backups = storage.NewBackupStore(a.db)
	case config.BackendRedis:
		store, err := storage.NewRedisBackupStore(a.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("open redis backups: %w", err)
		}
		a.Backups = store
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	default:
		return fmt.Errorf("unknown backup backend %q", a.cfg.BackupBackend)
	}
	return nil
}

// Start launches the scheduled re-sync and the theme watcher.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.SyncSchedule != "" {
		if err := a.startScheduler(ctx, a.cfg.SyncSchedule); err != nil {
			return err
		}
	}
	if _, err := os.Stat(a.cfg.ThemesDir); err == nil {
		w, err := themes.Watch(a.cfg.ThemesDir, a.Catalog, a.onThemeReload(ctx), a.log)
		if err != nil {
			return fmt.Errorf("watch themes: %w", err)
		}
		a.watcher = w
	}
	return nil
}

// onThemeReload re-syncs when the active theme's definition changed, since
// declared page shapes may have moved.
func (a *App) onThemeReload(ctx context.Context) themes.ReloadHandler {
	return func(def *domain.ThemeDefinition) {
		if def.Number != a.Editor.ActiveTheme() {
			return
		}
		if _, err := a.Sync.Sync(ctx); err != nil {
			a.log.Error().Err(err).Int("theme", def.Number).Msg("resync after theme reload")
		}
	}
}

// Close stops background jobs and closes the stores.
func (a *App) Close(ctx context.Context) error {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// logEmitter reports engine events to the log; a headless session has no
// frontend to notify.
type logEmitter struct {
	log zerolog.Logger
}

func (e logEmitter) Emit(_ context.Context, event string, data any) {
	e.log.Debug().Str("event", event).Interface("data", data).Msg("engine event")
}
