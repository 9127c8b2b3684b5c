package themes

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"liveeditor/internal/domain"
)

// ReloadHandler is called after a theme file was re-read into the catalog.
type ReloadHandler func(def *domain.ThemeDefinition)

// Watcher reloads theme files into a catalog when they change on disk.
type Watcher struct {
	watcher  *fsnotify.Watcher
	catalog  *Catalog
	onReload ReloadHandler
	log      zerolog.Logger
	done     chan struct{}
}

// Watch starts watching dir. Close stops it.
func Watch(dir string, catalog *Catalog, onReload ReloadHandler, log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		watcher:  fw,
		catalog:  catalog,
		onReload: onReload,
		log:      log.With().Str("component", "theme-watcher").Logger(),
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Close stops the watcher and waits for the loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsThemeFile(filepath.Base(event.Name)) {
				continue
			}
			def, err := LoadFile(event.Name)
			if err != nil {
				// editors often write files in several steps; the next event retries
				w.log.Warn().Err(err).Str("file", event.Name).Msg("reload theme")
				continue
			}
			w.catalog.Put(def)
			w.log.Info().Int("theme", def.Number).Str("file", event.Name).Msg("theme reloaded")
			if w.onReload != nil {
				w.onReload(def)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}
