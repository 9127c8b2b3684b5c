// Package composition applies ordering mutations to a page's component list.
// Every function here is a pure value transform: inputs are never modified,
// and a refused mutation returns the original list with a Diagnostic.
package composition

import (
	"fmt"

	"liveeditor/internal/domain"
)

// Diagnostic describes a mutation that was refused.
type Diagnostic struct {
	Operation       string `json:"operation"`
	SourceIndex     int    `json:"sourceIndex"`
	CalculatedIndex int    `json:"calculatedIndex"`
	FinalIndex      int    `json:"finalIndex"`
	Reason          string `json:"reason"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s refused (source %d, calculated %d, final %d): %s",
		d.Operation, d.SourceIndex, d.CalculatedIndex, d.FinalIndex, d.Reason)
}

// Move removes the node at src and reinserts it at dst of the shortened list,
// then renumbers. dst is already resolved against the post-removal list.
func Move(list []domain.ComponentNode, src, dst int) ([]domain.ComponentNode, *Diagnostic) {
	diag := func(reason string) ([]domain.ComponentNode, *Diagnostic) {
		return list, &Diagnostic{Operation: "move", SourceIndex: src, CalculatedIndex: dst, FinalIndex: src, Reason: reason}
	}
	n := len(list)
	if src < 0 || src >= n {
		return diag(fmt.Sprintf("source index out of range [0,%d)", n))
	}
	if dst < 0 || dst >= n {
		return diag(fmt.Sprintf("destination index out of range [0,%d)", n))
	}
	if err := Validate(list); err != nil {
		return diag(err.Error())
	}

	out := make([]domain.ComponentNode, 0, n)
	moved := list[src].Clone()
	for i := range list {
		if i != src {
			out = append(out, list[i].Clone())
		}
	}
	out = append(out, domain.ComponentNode{})
	copy(out[dst+1:], out[dst:])
	out[dst] = moved
	return Renumber(out), nil
}

// Insert places node at index, clamped to [0, len(list)], and renumbers.
func Insert(list []domain.ComponentNode, node domain.ComponentNode, index int) ([]domain.ComponentNode, *Diagnostic) {
	for _, n := range list {
		if n.ID == node.ID {
			return list, &Diagnostic{Operation: "insert", SourceIndex: -1, CalculatedIndex: index, FinalIndex: -1,
				Reason: "duplicate component id " + node.ID}
		}
	}
	if index < 0 {
		index = 0
	}
	if index > len(list) {
		index = len(list)
	}
	out := make([]domain.ComponentNode, 0, len(list)+1)
	out = append(out, domain.CloneNodes(list[:index])...)
	out = append(out, node.Clone())
	out = append(out, domain.CloneNodes(list[index:])...)
	return Renumber(out), nil
}

// Remove drops the node with the given id and renumbers.
func Remove(list []domain.ComponentNode, id string) ([]domain.ComponentNode, *Diagnostic) {
	idx := IndexOf(list, id)
	if idx < 0 {
		return list, &Diagnostic{Operation: "remove", SourceIndex: -1, CalculatedIndex: -1, FinalIndex: -1,
			Reason: "component " + id + " not found"}
	}
	out := make([]domain.ComponentNode, 0, len(list)-1)
	for i := range list {
		if i != idx {
			out = append(out, list[i].Clone())
		}
	}
	return Renumber(out), nil
}

// Renumber stamps position and layout.row with each node's array index. The
// slice is modified in place and returned.
func Renumber(list []domain.ComponentNode) []domain.ComponentNode {
	for i := range list {
		list[i].Position = i
		list[i].Layout.Row = i
	}
	return list
}

// IndexOf returns the array index of id, or -1.
func IndexOf(list []domain.ComponentNode, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks ids are unique and non-empty. Positions are not checked:
// they are derived from array order by Renumber.
func Validate(list []domain.ComponentNode) error {
	seen := make(map[string]struct{}, len(list))
	for i, n := range list {
		if n.ID == "" {
			return fmt.Errorf("component at index %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate component id %s", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// IsDense reports whether positions and layout rows are a 0..N-1 sequence
// matching array order.
func IsDense(list []domain.ComponentNode) bool {
	for i, n := range list {
		if n.Position != i || n.Layout.Row != i {
			return false
		}
	}
	return true
}
