// Package surface provides headless implementations of the layout query port.
package surface

import (
	"sync"

	"liveeditor/internal/domain"
	"liveeditor/internal/state"
)

// Attributes are what the engine writes onto a rendered element.
type Attributes struct {
	ComponentID      string `json:"data-component-id"`
	Position         int    `json:"data-position"`
	PositionRelative bool   `json:"positionRelative"`
}

type tags struct {
	mu    sync.Mutex
	attrs map[string]Attributes
}

func (t *tags) TagElement(id string, position int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.attrs == nil {
		t.attrs = make(map[string]Attributes)
	}
	t.attrs[id] = Attributes{ComponentID: id, Position: position, PositionRelative: true}
}

// Attributes returns the attributes last written for an element.
func (t *tags) Attributes(id string) (Attributes, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attrs[id]
	return a, ok
}

// Fixture returns a fixed set of element boxes.
type Fixture struct {
	tags
	mu       sync.Mutex
	elements []domain.ElementBounds
}

func NewFixture(elements ...domain.ElementBounds) *Fixture {
	return &Fixture{elements: elements}
}

func (f *Fixture) Set(elements ...domain.ElementBounds) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements = elements
}

func (f *Fixture) ListComponentBounds() []domain.ElementBounds {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ElementBounds(nil), f.elements...)
}

// Stacked lays the editor's current page out as a vertical stack of equal
// rows, the way the site renders sections top to bottom.
type Stacked struct {
	tags
	editor    *state.Editor
	rowHeight float64
}

func NewStacked(editor *state.Editor, rowHeight float64) *Stacked {
	if rowHeight <= 0 {
		rowHeight = 100
	}
	return &Stacked{editor: editor, rowHeight: rowHeight}
}

func (s *Stacked) RowHeight() float64 { return s.rowHeight }

func (s *Stacked) ListComponentBounds() []domain.ElementBounds {
	nodes := s.editor.Page(s.editor.CurrentPage())
	out := make([]domain.ElementBounds, len(nodes))
	for i, n := range nodes {
		top := float64(i) * s.rowHeight
		out[i] = domain.ElementBounds{
			ID:       n.ID,
			Zone:     n.ZoneOrRoot(),
			Position: n.Position,
			Top:      top,
			Bottom:   top + s.rowHeight,
		}
	}
	return out
}

var (
	_ domain.LayoutQueryPort = (*Fixture)(nil)
	_ domain.LayoutQueryPort = (*Stacked)(nil)
)
