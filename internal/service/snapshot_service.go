package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"liveeditor/internal/domain"
	"liveeditor/internal/state"
)

// ─────────────────────────────────────────────────────────────
// Snapshot Service — captures the active theme's composition
// ─────────────────────────────────────────────────────────────

// SnapshotService builds backup records of the active theme.
type SnapshotService struct {
	editor *state.Editor
	docs   domain.DocumentStore
	now    func() time.Time
	log    zerolog.Logger
}

func NewSnapshotService(editor *state.Editor, docs domain.DocumentStore, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		editor: editor,
		docs:   docs,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With().Str("component", "snapshot").Logger(),
	}
}

// Capture snapshots every non-empty page, the static pages and the global
// header/footer of the active theme. Each page keeps the shape the persisted
// document used for it. The record is nil when no theme is active or there
// is nothing to capture.
func (s *SnapshotService) Capture(ctx context.Context) (string, *domain.ThemeSnapshot, error) {
	theme := s.editor.ActiveTheme()
	if theme == 0 {
		return "", nil, nil
	}
	key := domain.BackupKey(theme)
	if s.editor.IsEmpty() {
		return key, nil, nil
	}

	persisted, err := s.docs.LoadDocument(ctx, s.editor.TenantID())
	if err != nil {
		return key, nil, fmt.Errorf("capture %s: load document: %w", key, err)
	}

	snap := &domain.ThemeSnapshot{
		Key:              key,
		Theme:            theme,
		Pages:            make(map[string]domain.PageComposition),
		GlobalComponents: s.editor.Global().EmbedVariants(),
		StaticPages:      s.editor.StaticPages(),
		CapturedAt:       s.now(),
	}
	for name, nodes := range s.editor.Pages() {
		if len(nodes) == 0 {
			continue
		}
		shape, ok := persisted.PageShape(name)
		if !ok {
			shape = domain.ShapeOrdered
		}
		snap.Pages[name] = domain.Compose(shape, nodes)
	}

	s.log.Debug().Str("key", key).Int("pages", len(snap.Pages)).Int("static_pages", len(snap.StaticPages)).Msg("snapshot captured")
	return key, snap, nil
}
