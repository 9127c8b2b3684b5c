// Package zones tracks the drop zones mounted during a drag session and
// arbitrates which of them is a valid target.
package zones

import (
	"sort"
	"sync"

	"liveeditor/internal/domain"
)

type zone struct {
	key   domain.ZoneKey
	depth int
	order int // registration sequence, later wins depth ties
	// session zones are mounted for one drag and dropped by EndDrag
	session bool
	allow   map[domain.ComponentType]struct{}
	deny    map[domain.ComponentType]struct{}
}

// Registry is the zone depth registry of one editor session. Zones are
// rebuilt every session from the currently mounted containers; nothing here
// is persisted.
type Registry struct {
	mu       sync.RWMutex
	zones    map[domain.ZoneKey]*zone
	seq      int
	hovered  map[domain.ZoneKey]struct{}
	deepest  domain.ZoneKey
	dragType domain.ComponentType
	dragging bool
}

// NewRegistry returns a registry with the root zone mounted.
func NewRegistry() *Registry {
	r := &Registry{
		zones:   make(map[domain.ZoneKey]*zone),
		hovered: make(map[domain.ZoneKey]struct{}),
	}
	r.Register(domain.RootZone, 0, domain.ZoneFilter{})
	return r
}

// Register mounts (or re-mounts) a zone at the given nesting depth.
func (r *Registry) Register(key domain.ZoneKey, depth int, filter domain.ZoneFilter) {
	if key == "" {
		key = domain.RootZone
	}
	if key == domain.RootZone {
		depth = 0
	}
	allow := make(map[domain.ComponentType]struct{}, len(filter.Allow))
	for _, t := range filter.Allow {
		allow[t] = struct{}{}
	}
	deny := make(map[domain.ComponentType]struct{}, len(filter.Disallow))
	for _, t := range filter.Disallow {
		// explicit allow wins ties
		if _, ok := allow[t]; ok {
			continue
		}
		deny[t] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.zones[key] = &zone{key: key, depth: depth, order: r.seq, allow: allow, deny: deny}
	r.recomputeLocked()
}

// Mount registers a container discovered for the current drag session. It
// accepts every type and never replaces a zone registered with Register.
// EndDrag unmounts it.
func (r *Registry) Mount(key domain.ZoneKey, depth int) {
	if key.IsRoot() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if z, ok := r.zones[key]; ok {
		if z.session && z.depth != depth {
			z.depth = depth
			r.recomputeLocked()
		}
		return
	}
	r.seq++
	r.zones[key] = &zone{key: key, depth: depth, order: r.seq, session: true}
	r.recomputeLocked()
}

// Mounted reports whether key is currently registered.
func (r *Registry) Mounted(key domain.ZoneKey) bool {
	if key == "" {
		key = domain.RootZone
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.zones[key]
	return ok
}

// Unregister removes a zone. The root zone cannot be removed.
func (r *Registry) Unregister(key domain.ZoneKey) {
	if key.IsRoot() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.zones, key)
	delete(r.hovered, key)
	r.recomputeLocked()
}

// BeginDrag records the type of the item being dragged.
func (r *Registry) BeginDrag(itemType domain.ComponentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dragType = itemType
	r.dragging = true
}

// EndDrag clears the in-flight item, the pointer intersection and the zones
// mounted for the session.
func (r *Registry) EndDrag() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, z := range r.zones {
		if z.session {
			delete(r.zones, k)
		}
	}
	r.dragType = ""
	r.dragging = false
	r.hovered = make(map[domain.ZoneKey]struct{})
	r.deepest = ""
}

// Hover replaces the set of zones currently containing the pointer.
func (r *Registry) Hover(keys ...domain.ZoneKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hovered = make(map[domain.ZoneKey]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			k = domain.RootZone
		}
		if _, ok := r.zones[k]; ok {
			r.hovered[k] = struct{}{}
		}
	}
	r.recomputeLocked()
}

func (r *Registry) recomputeLocked() {
	var best *zone
	for k := range r.hovered {
		z, ok := r.zones[k]
		if !ok {
			continue
		}
		if best == nil || z.depth > best.depth || (z.depth == best.depth && z.order > best.order) {
			best = z
		}
	}
	if best == nil {
		r.deepest = ""
		return
	}
	r.deepest = best.key
}

// Deepest returns the deepest zone under the pointer, or "" when the pointer
// is outside every registered zone.
func (r *Registry) Deepest() domain.ZoneKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deepest
}

// Accepts reports whether the zone accepts the dragged item's type.
func (r *Registry) Accepts(key domain.ZoneKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.acceptsLocked(key)
}

func (r *Registry) acceptsLocked(key domain.ZoneKey) bool {
	if key == "" {
		key = domain.RootZone
	}
	z, ok := r.zones[key]
	if !ok {
		return false
	}
	t := r.dragType
	if len(z.allow) > 0 {
		if _, ok := z.allow[t]; !ok {
			return false
		}
	}
	_, denied := z.deny[t]
	return !denied
}

// IsEnabled reports whether key is a valid drop target right now: it must be
// the deepest zone under the pointer and accept the dragged type. The root
// zone is exempt from the deepest rule.
func (r *Registry) IsEnabled(key domain.ZoneKey) bool {
	if key == "" {
		key = domain.RootZone
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.dragging {
		return false
	}
	if key != domain.RootZone && key != r.deepest {
		return false
	}
	return r.acceptsLocked(key)
}

// Target returns the zone a drop should land in: the deepest enabled zone,
// else the root zone if it accepts the item, else "".
func (r *Registry) Target() domain.ZoneKey {
	r.mu.RLock()
	deepest := r.deepest
	r.mu.RUnlock()
	if deepest != "" && r.IsEnabled(deepest) {
		return deepest
	}
	if r.IsEnabled(domain.RootZone) {
		return domain.RootZone
	}
	return ""
}

// ZoneInfo describes a registered zone.
type ZoneInfo struct {
	Key     domain.ZoneKey `json:"key"`
	Depth   int            `json:"depth"`
	Enabled bool           `json:"enabled"`
}

// Zones lists registered zones ordered by depth then registration.
func (r *Registry) Zones() []ZoneInfo {
	r.mu.RLock()
	list := make([]*zone, 0, len(r.zones))
	for _, z := range r.zones {
		list = append(list, z)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].depth != list[j].depth {
			return list[i].depth < list[j].depth
		}
		return list[i].order < list[j].order
	})
	out := make([]ZoneInfo, len(list))
	for i, z := range list {
		out[i] = ZoneInfo{Key: z.key, Depth: z.depth, Enabled: r.IsEnabled(z.key)}
	}
	return out
}
