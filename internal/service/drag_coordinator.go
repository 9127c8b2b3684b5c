package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"liveeditor/internal/composition"
	"liveeditor/internal/domain"
	"liveeditor/internal/layout"
	"liveeditor/internal/state"
	"liveeditor/internal/zones"
)

// ─────────────────────────────────────────────────────────────
// Drag Coordinator — one pointer gesture, at most one mutation
// ─────────────────────────────────────────────────────────────

type OutcomeKind string

const (
	OutcomeCanceled OutcomeKind = "canceled"
	OutcomeMissed   OutcomeKind = "missed"
	OutcomeMoved    OutcomeKind = "moved"
	OutcomeInserted OutcomeKind = "inserted"
	OutcomeRefused  OutcomeKind = "refused"
)

// DragOutcome reports how a gesture ended. Mutated is true only for moved
// and inserted outcomes.
type DragOutcome struct {
	Kind        OutcomeKind             `json:"kind"`
	ComponentID string                  `json:"componentId,omitempty"`
	Zone        domain.ZoneKey          `json:"zone,omitempty"`
	Resolution  layout.Resolution       `json:"resolution"`
	Index       int                     `json:"index"`
	Diagnostic  *composition.Diagnostic `json:"diagnostic,omitempty"`
	Reason      string                  `json:"reason,omitempty"`
}

func (o DragOutcome) Mutated() bool {
	return o.Kind == OutcomeMoved || o.Kind == OutcomeInserted
}

// DragCoordinator drives the drag pipeline: zone arbitration, index
// resolution, then a single move or insert on the current page.
type DragCoordinator struct {
	mu     sync.Mutex
	active *domain.DragOperation

	editor     *state.Editor
	zones      *zones.Registry
	resolver   *layout.Resolver
	surface    domain.LayoutQueryPort
	components *ComponentService
	sync       *Synchronizer
	emitter    EventEmitter
	log        zerolog.Logger
}

type DragDeps struct {
	Editor     *state.Editor
	Zones      *zones.Registry
	Surface    domain.LayoutQueryPort
	Components *ComponentService
	Sync       *Synchronizer
	Emitter    EventEmitter
	Log        zerolog.Logger
}

func NewDragCoordinator(d DragDeps) *DragCoordinator {
	return &DragCoordinator{
		editor:     d.Editor,
		zones:      d.Zones,
		resolver:   layout.NewResolver(d.Surface),
		surface:    d.Surface,
		components: d.Components,
		sync:       d.Sync,
		emitter:    emitterOrNop(d.Emitter),
		log:        d.Log.With().Str("component", "drag").Logger(),
	}
}

// Active returns a copy of the gesture in progress, if any.
func (c *DragCoordinator) Active() (domain.DragOperation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return domain.DragOperation{}, false
	}
	return *c.active, true
}

// OnDragStart records the source and classifies it as a reorder or a palette
// insert by its id prefix.
func (c *DragCoordinator) OnDragStart(op domain.DragOperation) (domain.DragOperation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return domain.DragOperation{}, domain.ErrDragInProgress
	}

	op.SourceKind = domain.ClassifySource(op.SourceID)
	switch op.SourceKind {
	case domain.SourcePalette:
		if op.ItemType == "" && op.Palette != nil {
			op.ItemType = op.Palette.ComponentType
		}
		if op.ItemType == "" {
			op.ItemType = domain.ComponentType(strings.TrimPrefix(op.SourceID, domain.PalettePrefix))
		}
	default:
		list := c.editor.Page(c.editor.CurrentPage())
		idx := composition.IndexOf(list, op.SourceID)
		if idx < 0 {
			return domain.DragOperation{}, fmt.Errorf("drag %s: %w", op.SourceID, domain.ErrNotFound)
		}
		op.ItemType = list[idx].Type
	}

	c.zones.BeginDrag(op.ItemType)
	c.mountPageZones()
	active := op
	c.active = &active
	c.log.Debug().Str("source", op.SourceID).Str("kind", string(op.SourceKind)).Str("type", string(op.ItemType)).Msg("drag start")
	return op, nil
}

// OnDragMove updates the pointer and the zones it intersects. It returns the
// zone a drop would land in, or "" when none is enabled.
func (c *DragCoordinator) OnDragMove(pointer domain.Point, hovered ...domain.ZoneKey) (domain.ZoneKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", domain.ErrNoActiveDrag
	}
	c.mountHovered(hovered)
	c.zones.Hover(hovered...)
	c.active.Pointer = pointer
	c.active.TargetZone = c.zones.Target()
	return c.active.TargetZone, nil
}

// OnDragEnd finishes the gesture. A canceled operation or one without an
// enabled target leaves the composition untouched.
func (c *DragCoordinator) OnDragEnd(ctx context.Context, op domain.DragOperation, final domain.Point) (DragOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return DragOutcome{}, domain.ErrNoActiveDrag
	}
	started := *c.active
	defer func() {
		c.active = nil
		c.zones.EndDrag()
	}()

	if op.Canceled {
		return DragOutcome{Kind: OutcomeCanceled}, nil
	}

	if op.SourceID == "" {
		op.SourceID = started.SourceID
	}
	op.SourceKind = domain.ClassifySource(op.SourceID)
	if op.ItemType == "" {
		op.ItemType = started.ItemType
	}
	if op.Palette == nil {
		op.Palette = started.Palette
	}

	zone := op.TargetZone
	if zone == "" {
		zone = started.TargetZone
	}
	if zone == "" {
		zone = c.zones.Target()
	}
	if zone == "" || !c.zones.IsEnabled(zone) {
		return DragOutcome{Kind: OutcomeMissed, Zone: zone, Reason: "no enabled drop zone"}, nil
	}

	res := c.resolver.Resolve(final.Y, zone, op.TargetComponentID)
	if res.Fallback {
		c.log.Debug().Str("reason", res.Reason).Int("index", res.Index).Msg("resolver fell back to append")
	}

	if op.SourceKind == domain.SourcePalette {
		return c.insert(ctx, op, zone, res)
	}
	return c.move(ctx, op, zone, res)
}

func (c *DragCoordinator) insert(ctx context.Context, op domain.DragOperation, zone domain.ZoneKey, res layout.Resolution) (DragOutcome, error) {
	req := AddRequest{Type: op.ItemType, Index: res.Index, Zone: zone}
	if op.Palette != nil {
		req.Data = op.Palette.Data
	}
	node, err := c.components.Add(ctx, req)
	if node == nil {
		return DragOutcome{Kind: OutcomeRefused, Zone: zone, Resolution: res, Reason: err.Error()}, err
	}
	c.tag()
	out := DragOutcome{Kind: OutcomeInserted, ComponentID: node.ID, Zone: zone, Resolution: res, Index: node.Position}
	if err != nil {
		return out, fmt.Errorf("drag %s: %w", op.SourceID, err)
	}
	return out, nil
}

func (c *DragCoordinator) move(ctx context.Context, op domain.DragOperation, zone domain.ZoneKey, res layout.Resolution) (DragOutcome, error) {
	page := c.editor.CurrentPage()
	list := c.editor.Page(page)
	src := composition.IndexOf(list, op.SourceID)
	if src < 0 {
		return DragOutcome{Kind: OutcomeMissed, Zone: zone, Resolution: res, Reason: "source component no longer on page"}, nil
	}

	// The resolver indexes the list before removal; the mutator expects an
	// index into the list after removal.
	dst := res.Index
	if dst > src {
		dst--
	}
	if list[src].ZoneOrRoot() != zone {
		list[src].Zone = zone
	}

	moved, diag := composition.Move(list, src, dst)
	if diag != nil {
		c.log.Warn().
			Str("source", op.SourceID).
			Int("source_index", diag.SourceIndex).
			Int("calculated_index", diag.CalculatedIndex).
			Int("final_index", diag.FinalIndex).
			Str("reason", diag.Reason).
			Msg("move refused")
		c.emitter.Emit(ctx, EventDragRefused, diag)
		return DragOutcome{Kind: OutcomeRefused, ComponentID: op.SourceID, Zone: zone, Resolution: res, Diagnostic: diag}, nil
	}

	c.editor.SetPage(page, moved)
	c.tag()
	c.emitter.Emit(ctx, EventCompositionChanged, map[string]any{"page": page, "op": "move", "id": op.SourceID})
	out := DragOutcome{Kind: OutcomeMoved, ComponentID: op.SourceID, Zone: zone, Resolution: res, Index: dst}
	if _, err := c.sync.Sync(ctx); err != nil {
		return out, fmt.Errorf("drag %s: %w", op.SourceID, err)
	}
	return out, nil
}

// mountPageZones mounts every container the current page places nodes in.
func (c *DragCoordinator) mountPageZones() {
	nodes := c.editor.Page(c.editor.CurrentPage())
	byID := nodesByID(nodes)
	for _, n := range nodes {
		key := n.ZoneOrRoot()
		if key.IsRoot() {
			continue
		}
		depth := zoneDepth(key, byID)
		if depth < 0 {
			// area not rendered on this page; still a live container
			depth = 1
		}
		c.zones.Mount(key, depth)
	}
}

// mountHovered mounts hovered zones owned by a component rendered on the
// current page. Keys of unknown areas are left for Hover to ignore.
func (c *DragCoordinator) mountHovered(hovered []domain.ZoneKey) {
	var byID map[string]domain.ComponentNode
	for _, key := range hovered {
		if key.IsRoot() || c.zones.Mounted(key) {
			continue
		}
		if byID == nil {
			byID = nodesByID(c.editor.Page(c.editor.CurrentPage()))
		}
		if depth := zoneDepth(key, byID); depth > 0 {
			c.zones.Mount(key, depth)
		} else {
			c.log.Debug().Str("zone", string(key)).Msg("hovered zone has no mounted container")
		}
	}
}

func nodesByID(nodes []domain.ComponentNode) map[string]domain.ComponentNode {
	out := make(map[string]domain.ComponentNode, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out
}

// zoneDepth counts the containers between key and the root: a zone sits one
// level below the zone its area component lives in. It returns -1 when the
// key is malformed or its area chain leaves the page.
func zoneDepth(key domain.ZoneKey, byID map[string]domain.ComponentNode) int {
	depth := 0
	for !key.IsRoot() {
		_, area, _, err := domain.ParseZoneKey(string(key))
		if err != nil {
			return -1
		}
		n, ok := byID[area]
		if !ok || depth > len(byID) {
			return -1
		}
		depth++
		key = n.ZoneOrRoot()
	}
	return depth
}

// tag writes the id and position attributes back onto the rendered elements.
func (c *DragCoordinator) tag() {
	if c.surface == nil {
		return
	}
	for _, n := range c.editor.Page(c.editor.CurrentPage()) {
		c.surface.TagElement(n.ID, n.Position)
	}
}
