// Package layout turns a pointer coordinate and the measured component boxes
// of the rendering surface into an insertion index.
package layout

import (
	"sort"

	"liveeditor/internal/domain"
)

// Resolution is the outcome of one index lookup. Fallback is set when the
// resolver could not find what it was asked about and placed conservatively
// at the end instead; that is not an error.
type Resolution struct {
	Index    int    `json:"index"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Resolver computes insertion indexes. It holds no state of its own; the
// port is consulted on every call.
type Resolver struct {
	port domain.LayoutQueryPort
}

func NewResolver(port domain.LayoutQueryPort) *Resolver {
	return &Resolver{port: port}
}

// Measure reads the current element boxes from the rendering surface.
func (r *Resolver) Measure() []domain.ElementBounds {
	if r.port == nil {
		return nil
	}
	return r.port.ListComponentBounds()
}

// Resolve measures the surface and resolves against the target component
// when one is given, else scans the zone.
func (r *Resolver) Resolve(pointerY float64, zone domain.ZoneKey, componentID string) Resolution {
	elements := r.Measure()
	if componentID != "" {
		return ResolveAgainst(pointerY, elements, componentID)
	}
	return ResolveIndex(pointerY, elements, zone)
}

// ResolveIndex scans the zone's elements top to bottom and inserts before the
// first one whose top edge is below the pointer, or after the last one.
func ResolveIndex(pointerY float64, elements []domain.ElementBounds, zone domain.ZoneKey) Resolution {
	candidates := inZone(elements, zone)
	if len(candidates) == 0 {
		return Resolution{Index: 0}
	}
	sortByTop(candidates)
	for _, el := range candidates {
		if el.Top > pointerY {
			return Resolution{Index: el.Position}
		}
	}
	return Resolution{Index: candidates[len(candidates)-1].Position + 1}
}

// ResolveAgainst applies the midpoint rule to a hovered component: below its
// midpoint targets position+1, otherwise position.
func ResolveAgainst(pointerY float64, elements []domain.ElementBounds, componentID string) Resolution {
	for _, el := range elements {
		if el.ID != componentID {
			continue
		}
		if pointerY > el.Midpoint() {
			return Resolution{Index: el.Position + 1}
		}
		return Resolution{Index: el.Position}
	}
	return Resolution{
		Index:    appendIndex(elements),
		Fallback: true,
		Reason:   "target component " + componentID + " not in measurement set",
	}
}

func appendIndex(elements []domain.ElementBounds) int {
	if len(elements) == 0 {
		return 0
	}
	last := -1
	for _, el := range elements {
		if el.Position > last {
			last = el.Position
		}
	}
	return last + 1
}

func inZone(elements []domain.ElementBounds, zone domain.ZoneKey) []domain.ElementBounds {
	out := make([]domain.ElementBounds, 0, len(elements))
	for _, el := range elements {
		if sameZone(el.Zone, zone) {
			out = append(out, el)
		}
	}
	return out
}

func sameZone(a, b domain.ZoneKey) bool {
	if a.IsRoot() && b.IsRoot() {
		return true
	}
	return a == b
}

func sortByTop(elements []domain.ElementBounds) {
	sort.SliceStable(elements, func(i, j int) bool {
		if elements[i].Top != elements[j].Top {
			return elements[i].Top < elements[j].Top
		}
		return elements[i].Position < elements[j].Position
	})
}
