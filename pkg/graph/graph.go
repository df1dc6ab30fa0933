package graph

import (
	"fmt"
	"slices"
)

// Graph is the editor-owned geometry graph: ordered parameters and ordered
// items. Items must reference only items declared before them; Validate
// reports violations, the compiler does not reorder.
type Graph struct {
	Parameters []Parameter `json:"parameters"`
	Items      []*Item     `json:"items"`
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{}
}

// Get returns the item with the given ID, or nil.
func (g *Graph) Get(id ItemID) *Item {
	for _, it := range g.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Lookup returns the item with the given name, or nil.
func (g *Graph) Lookup(name string) *Item {
	for _, it := range g.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// MustLookup returns the item with the given name, or panics.
func (g *Graph) MustLookup(name string) *Item {
	it := g.Lookup(name)
	if it == nil {
		panic(fmt.Sprintf("graph: no item named %q", name))
	}
	return it
}

// ItemCount returns the total number of items.
func (g *Graph) ItemCount() int {
	return len(g.Items)
}

// VisibleItems returns the visible items in declaration order.
func (g *Graph) VisibleItems() []*Item {
	var out []*Item
	for _, it := range g.Items {
		if it.Visible {
			out = append(out, it)
		}
	}
	return out
}

// Dependents returns the items that take id as a constructor argument.
func (g *Graph) Dependents(id ItemID) []*Item {
	var out []*Item
	for _, it := range g.Items {
		if slices.Contains(it.Dependencies(), id) {
			out = append(out, it)
		}
	}
	return out
}

// Parameter returns the parameter with the given id.
func (g *Graph) Parameter(id string) (Parameter, bool) {
	for _, p := range g.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

// Clone returns a deep copy. Cycles compiled from a clone are unaffected by
// later edits to the original.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Parameters: make([]Parameter, len(g.Parameters)),
		Items:      make([]*Item, len(g.Items)),
	}
	for i, p := range g.Parameters {
		if p.Value != nil {
			v := *p.Value
			p.Value = &v
		}
		c.Parameters[i] = p
	}
	for i, it := range g.Items {
		c.Items[i] = it.clone()
	}
	return c
}
