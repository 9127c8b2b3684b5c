package domain

import "strings"

// PalettePrefix marks a drag source id as a not-yet-placed palette item.
const PalettePrefix = "palette-"

type SourceKind string

const (
	SourceExisting SourceKind = "existing-component"
	SourcePalette  SourceKind = "palette-item"
)

// ClassifySource inspects the id naming convention.
func ClassifySource(sourceID string) SourceKind {
	if strings.HasPrefix(sourceID, PalettePrefix) {
		return SourcePalette
	}
	return SourceExisting
}

// PaletteID builds the drag source id for a palette entry.
func PaletteID(t ComponentType) string {
	return PalettePrefix + string(t)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragOperation lives for the duration of one pointer gesture.
type DragOperation struct {
	SourceID   string     `json:"sourceId"`
	SourceKind SourceKind `json:"sourceKind"`
	// ItemType is the dragged component's type; resolved from the page for
	// existing components.
	ItemType   ComponentType `json:"itemType"`
	Pointer    Point         `json:"pointer"`
	TargetZone ZoneKey       `json:"targetZone"`
	// TargetComponentID is set when the pointer resolved against a specific
	// component rather than the bare zone.
	TargetComponentID string       `json:"targetComponentId,omitempty"`
	Palette           *PaletteItem `json:"palette,omitempty"`
	Canceled          bool         `json:"canceled"`
}

// PaletteItem is emitted by the palette when a new component is dragged in.
type PaletteItem struct {
	ComponentType ComponentType  `json:"componentType"`
	Section       string         `json:"section"`
	Data          map[string]any `json:"data,omitempty"`
}
