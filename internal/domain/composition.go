package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Shape is how a page's component list is persisted in a tenant document.
type Shape string

const (
	ShapeOrdered Shape = "array"
	ShapeKeyed   Shape = "map"
)

func (s Shape) Valid() bool {
	return s == ShapeOrdered || s == ShapeKeyed
}

// PageComposition is a page's component list together with the shape it is
// persisted in. Nodes are always held in position order; Shape only affects
// encoding.
type PageComposition struct {
	Shape Shape
	Nodes []ComponentNode
}

func Ordered(nodes []ComponentNode) PageComposition {
	return PageComposition{Shape: ShapeOrdered, Nodes: nodes}
}

func Keyed(nodes []ComponentNode) PageComposition {
	return PageComposition{Shape: ShapeKeyed, Nodes: nodes}
}

// Compose builds a composition of the given shape, treating an unknown shape
// as ordered.
func Compose(shape Shape, nodes []ComponentNode) PageComposition {
	if shape == ShapeKeyed {
		return Keyed(nodes)
	}
	return Ordered(nodes)
}

func (c PageComposition) Len() int { return len(c.Nodes) }

func (c PageComposition) Clone() PageComposition {
	return PageComposition{Shape: c.Shape, Nodes: CloneNodes(c.Nodes)}
}

// ByID returns the keyed view of the composition.
func (c PageComposition) ByID() map[string]ComponentNode {
	out := make(map[string]ComponentNode, len(c.Nodes))
	for _, n := range c.Nodes {
		out[n.ID] = n
	}
	return out
}

func (c PageComposition) MarshalJSON() ([]byte, error) {
	switch c.Shape {
	case ShapeKeyed:
		return json.Marshal(c.ByID())
	default:
		nodes := c.Nodes
		if nodes == nil {
			nodes = []ComponentNode{}
		}
		return json.Marshal(nodes)
	}
}

func (c *PageComposition) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Ordered([]ComponentNode{})
		return nil
	}
	switch trimmed[0] {
	case '[':
		var nodes []ComponentNode
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return err
		}
		*c = Ordered(nodes)
	case '{':
		keyed := map[string]ComponentNode{}
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return err
		}
		nodes := make([]ComponentNode, 0, len(keyed))
		for id, n := range keyed {
			if n.ID == "" {
				n.ID = id
			}
			nodes = append(nodes, n)
		}
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].Position != nodes[j].Position {
				return nodes[i].Position < nodes[j].Position
			}
			return nodes[i].ID < nodes[j].ID
		})
		*c = Keyed(nodes)
	default:
		return fmt.Errorf("page composition: unexpected token %q", trimmed[0])
	}
	return nil
}
