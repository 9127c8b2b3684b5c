package domain

import (
	"encoding/json"
	"fmt"
)

type ComponentType string

const (
	ComponentTypeHero   ComponentType = "hero"
	ComponentTypeHeader ComponentType = "header"
	ComponentTypeFooter ComponentType = "footer"
	ComponentTypeCards  ComponentType = "cards"
	ComponentTypeForm   ComponentType = "form"
	ComponentTypeText   ComponentType = "text"
)

// Layout is a coarse grid hint. Row mirrors Position after every mutation
// because downstream consumers read either field.
type Layout struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Span int `json:"span"`
}

// ComponentNode is one placed unit of UI on a page.
type ComponentNode struct {
	ID          string        `json:"id"`
	Type        ComponentType `json:"type"`
	VariantName string        `json:"componentName"`
	Zone        ZoneKey       `json:"zone,omitempty"`
	Data        Payload       `json:"data"`
	Position    int           `json:"position"`
	Layout      Layout        `json:"layout"`
}

// ZoneOrRoot returns the zone the node lives in, defaulting to the root zone.
func (n ComponentNode) ZoneOrRoot() ZoneKey {
	if n.Zone == "" {
		return RootZone
	}
	return n.Zone
}

type componentNodeJSON struct {
	ID          string          `json:"id"`
	Type        ComponentType   `json:"type"`
	VariantName string          `json:"componentName"`
	Zone        ZoneKey         `json:"zone,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Position    int             `json:"position"`
	Layout      Layout          `json:"layout"`
}

func (n ComponentNode) MarshalJSON() ([]byte, error) {
	raw := componentNodeJSON{
		ID:          n.ID,
		Type:        n.Type,
		VariantName: n.VariantName,
		Zone:        n.Zone,
		Position:    n.Position,
		Layout:      n.Layout,
	}
	data := n.Data
	if data == nil {
		data = NewPayload(n.Type)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", n.Type, err)
	}
	raw.Data = b
	return json.Marshal(raw)
}

func (n *ComponentNode) UnmarshalJSON(b []byte) error {
	var raw componentNodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	payload, err := DecodePayload(raw.Type, raw.Data)
	if err != nil {
		return fmt.Errorf("component %s: %w", raw.ID, err)
	}
	*n = ComponentNode{
		ID:          raw.ID,
		Type:        raw.Type,
		VariantName: raw.VariantName,
		Zone:        raw.Zone,
		Data:        payload,
		Position:    raw.Position,
		Layout:      raw.Layout,
	}
	return nil
}

// Clone returns a deep copy of the node, payload included.
func (n ComponentNode) Clone() ComponentNode {
	out := n
	if n.Data != nil {
		out.Data = n.Data.clonePayload()
	}
	return out
}

// CloneNodes deep-copies a component list. A nil input yields an empty list.
func CloneNodes(nodes []ComponentNode) []ComponentNode {
	out := make([]ComponentNode, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Clone()
	}
	return out
}
