package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"liveeditor/internal/composition"
	"liveeditor/internal/domain"
	"liveeditor/internal/state"
)

// ─────────────────────────────────────────────────────────────
// Component Service — page-level component lifecycle
// ─────────────────────────────────────────────────────────────

// AddRequest describes a palette drop. Page defaults to the current page and
// Zone to the root zone.
type AddRequest struct {
	Page    string               `json:"page,omitempty"`
	Type    domain.ComponentType `json:"type"`
	Index   int                  `json:"index"`
	Zone    domain.ZoneKey       `json:"zone,omitempty"`
	Variant string               `json:"variant,omitempty"`
	Data    map[string]any       `json:"data,omitempty"`
}

// ComponentService adds, moves and removes components on editor pages. Every
// successful change is followed by one sync.
type ComponentService struct {
	editor  *state.Editor
	themes  domain.ThemeSource
	sync    *Synchronizer
	emitter EventEmitter
	log     zerolog.Logger
	newID   func() string
}

func NewComponentService(editor *state.Editor, themes domain.ThemeSource, sync *Synchronizer, emitter EventEmitter, log zerolog.Logger) *ComponentService {
	return &ComponentService{
		editor:  editor,
		themes:  themes,
		sync:    sync,
		emitter: emitterOrNop(emitter),
		log:     log.With().Str("component", "components").Logger(),
		newID:   uuid.NewString,
	}
}

func (s *ComponentService) page(name string) string {
	if name == "" {
		return s.editor.CurrentPage()
	}
	return name
}

// List returns a page's components in order.
func (s *ComponentService) List(page string) []domain.ComponentNode {
	return s.editor.Page(s.page(page))
}

// Add inserts a new component at req.Index. Variant and payload default to
// what the active theme uses for the same type. A non-nil node is returned
// with a sync error when the insert was applied but not persisted.
func (s *ComponentService) Add(ctx context.Context, req AddRequest) (*domain.ComponentNode, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("add component: type is required")
	}
	page := s.page(req.Page)
	variant, defaults := s.themeDefaults(req.Type)
	if req.Variant != "" {
		variant = req.Variant
	}

	var (
		data domain.Payload
		err  error
	)
	switch {
	case len(req.Data) > 0:
		data, err = domain.PayloadFromFields(req.Type, req.Data)
		if err != nil {
			return nil, fmt.Errorf("add component: %w", err)
		}
	case defaults != nil:
		data = defaults
	default:
		data = domain.NewPayload(req.Type)
	}

	zone := req.Zone
	if zone == "" {
		zone = domain.RootZone
	}
	node := domain.ComponentNode{
		ID:          s.newID(),
		Type:        req.Type,
		VariantName: variant,
		Zone:        zone,
		Data:        data,
		Layout:      domain.Layout{Span: 12},
	}

	list, diag := composition.Insert(s.editor.Page(page), node, req.Index)
	if diag != nil {
		return nil, fmt.Errorf("add component: %w", diag)
	}
	s.editor.SetPage(page, list)
	placed := list[composition.IndexOf(list, node.ID)]
	// The node stays placed when the sync fails; callers get both.
	if err := s.changed(ctx, page, "add", node.ID); err != nil {
		return &placed, err
	}
	return &placed, nil
}

// Remove deletes a component from a page.
func (s *ComponentService) Remove(ctx context.Context, page, id string) error {
	page = s.page(page)
	list, diag := composition.Remove(s.editor.Page(page), id)
	if diag != nil {
		return fmt.Errorf("remove component %s: %w", id, domain.ErrNotFound)
	}
	s.editor.SetPage(page, list)
	return s.changed(ctx, page, "remove", id)
}

// Move reorders by array index. dst is an index of the list after removal.
func (s *ComponentService) Move(ctx context.Context, page string, src, dst int) ([]domain.ComponentNode, error) {
	page = s.page(page)
	list, diag := composition.Move(s.editor.Page(page), src, dst)
	if diag != nil {
		s.log.Warn().
			Str("page", page).
			Int("source", diag.SourceIndex).
			Int("calculated", diag.CalculatedIndex).
			Str("reason", diag.Reason).
			Msg("move refused")
		return list, diag
	}
	s.editor.SetPage(page, list)
	return list, s.changed(ctx, page, "move", list[dst].ID)
}

// MoveByID moves the component with the given id to dst.
func (s *ComponentService) MoveByID(ctx context.Context, page, id string, dst int) ([]domain.ComponentNode, error) {
	page = s.page(page)
	src := composition.IndexOf(s.editor.Page(page), id)
	if src < 0 {
		return nil, fmt.Errorf("move component %s: %w", id, domain.ErrNotFound)
	}
	return s.Move(ctx, page, src, dst)
}

func (s *ComponentService) changed(ctx context.Context, page, op, id string) error {
	s.emitter.Emit(ctx, EventCompositionChanged, map[string]any{"page": page, "op": op, "id": id})
	if _, err := s.sync.Sync(ctx); err != nil {
		return fmt.Errorf("%s component %s: %w", op, id, err)
	}
	return nil
}

// themeDefaults finds the variant and payload the active theme uses for t.
func (s *ComponentService) themeDefaults(t domain.ComponentType) (string, domain.Payload) {
	fallback := string(t) + "1"
	theme := s.editor.ActiveTheme()
	if theme == 0 || s.themes == nil {
		return fallback, nil
	}
	def, err := s.themes.Definition(theme)
	if err != nil {
		return fallback, nil
	}
	for _, name := range sortedPageNames(def.Pages) {
		for _, n := range def.Pages[name].Components {
			if n.Type == t {
				var data domain.Payload
				if n.Data != nil {
					data = n.Clone().Data
				}
				return n.VariantName, data
			}
		}
	}
	switch t {
	case domain.ComponentTypeHeader:
		if v := def.Global.Header.Variant; v != "" {
			return v, nil
		}
	case domain.ComponentTypeFooter:
		if v := def.Global.Footer.Variant; v != "" {
			return v, nil
		}
	}
	return fallback, nil
}

func sortedPageNames(pages map[string]domain.ThemePage) []string {
	names := make([]string, 0, len(pages))
	for n := range pages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
