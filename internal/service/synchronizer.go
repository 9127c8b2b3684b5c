package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"liveeditor/internal/domain"
	"liveeditor/internal/state"
)

// ─────────────────────────────────────────────────────────────
// Synchronizer — propagates the editor buffer into the tenant document
// ─────────────────────────────────────────────────────────────

// Synchronizer is the only writer of the tenant document. The editor holds
// every page as an ordered list; the synchronizer converts each page back to
// the shape the document uses for it.
type Synchronizer struct {
	mu      sync.Mutex
	editor  *state.Editor
	docs    domain.DocumentStore
	themes  domain.ThemeSource
	emitter EventEmitter
	log     zerolog.Logger
}

func NewSynchronizer(editor *state.Editor, docs domain.DocumentStore, themes domain.ThemeSource, emitter EventEmitter, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		editor:  editor,
		docs:    docs,
		themes:  themes,
		emitter: emitterOrNop(emitter),
		log:     log.With().Str("component", "synchronizer").Logger(),
	}
}

// Sync writes the editor buffer to the document store.
func (s *Synchronizer) Sync(ctx context.Context) (*domain.TenantDocument, error) {
	return s.SyncWithHints(ctx, nil)
}

// SyncWithHints is Sync with extra per-page shapes, consulted after the theme
// definition and before the previously persisted document. The orchestrator
// passes the shapes of a restored backup here.
func (s *Synchronizer) SyncWithHints(ctx context.Context, hints map[string]domain.Shape) (*domain.TenantDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant := s.editor.TenantID()
	prev, err := s.docs.LoadDocument(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("sync: load document: %w", err)
	}

	active := s.editor.ActiveTheme()
	var def *domain.ThemeDefinition
	if active != 0 && s.themes != nil {
		def, err = s.themes.Definition(active)
		if err != nil {
			s.log.Debug().Err(err).Int("theme", active).Msg("theme definition unavailable, using persisted shapes")
			def = nil
		}
	}

	doc := domain.NewTenantDocument(tenant)
	doc.ActiveTheme = active
	for name, nodes := range s.editor.Pages() {
		shape := s.resolveShape(name, def, hints, prev)
		doc.ComponentSettings[name] = domain.Compose(shape, nodes)
	}
	doc.GlobalComponentsData = s.editor.Global().EmbedVariants()
	doc.StaticPagesData = s.editor.StaticPages()

	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("sync: save document: %w", err)
	}
	s.emitter.Emit(ctx, EventDocumentSynced, map[string]any{
		"tenant": tenant,
		"theme":  active,
		"pages":  len(doc.ComponentSettings),
	})
	return doc, nil
}

func (s *Synchronizer) resolveShape(page string, def *domain.ThemeDefinition, hints map[string]domain.Shape, prev *domain.TenantDocument) domain.Shape {
	if def != nil {
		if p, ok := def.Pages[page]; ok && p.Shape.Valid() {
			return p.Shape
		}
	}
	if h, ok := hints[page]; ok && h.Valid() {
		return h
	}
	if shape, ok := prev.PageShape(page); ok {
		return shape
	}
	s.log.Debug().Str("page", page).Msg("no declared or persisted shape, defaulting to array")
	return domain.ShapeOrdered
}
