package graph

import "fmt"

// This file holds the editor-facing mutation API. Every Add* call appends
// to the end of the item list, so items built from these calls always
// reference earlier items.

// AddParameter declares a parameter with the given default. The id must
// be a valid identifier and unique within the graph.
func (g *Graph) AddParameter(id string, def float64) error {
	if !ValidParameterID(id) {
		return fmt.Errorf("graph: invalid parameter id %q", id)
	}
	if _, exists := g.Parameter(id); exists {
		return fmt.Errorf("graph: parameter %q already defined", id)
	}
	g.Parameters = append(g.Parameters, Parameter{ID: id, Default: def})
	return nil
}

// SetParameter sets the current value of a parameter.
func (g *Graph) SetParameter(id string, v float64) error {
	for i := range g.Parameters {
		if g.Parameters[i].ID == id {
			g.Parameters[i].Value = &v
			return nil
		}
	}
	return fmt.Errorf("graph: parameter %q not found", id)
}

// ResetParameter clears the current value so the default applies again.
func (g *Graph) ResetParameter(id string) error {
	for i := range g.Parameters {
		if g.Parameters[i].ID == id {
			g.Parameters[i].Value = nil
			return nil
		}
	}
	return fmt.Errorf("graph: parameter %q not found", id)
}

// nextID returns one past the largest assigned item ID.
func (g *Graph) nextID() ItemID {
	var max ItemID
	for _, it := range g.Items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

// AddItem appends an item. A zero ID is replaced by the next free ID and
// an empty name by "<kind><id>". It does not check for duplicates;
// Validate does.
func (g *Graph) AddItem(it *Item) *Item {
	if it.ID.IsZero() {
		it.ID = g.nextID()
	}
	if it.Name == "" {
		it.Name = fmt.Sprintf("%s%d", it.Kind(), it.ID)
	}
	g.Items = append(g.Items, it)
	return it
}

// AddBox appends a visible box item.
func (g *Graph) AddBox(name string, size, position Vec3) *Item {
	return g.AddItem(&Item{
		Name:    name,
		Visible: true,
		Data:    BoxData{Size: size, Position: position},
	})
}

// AddCylinder appends a visible cylinder item.
func (g *Graph) AddCylinder(name string, height, radius Expr, position Vec3) *Item {
	return g.AddItem(&Item{
		Name:    name,
		Visible: true,
		Data:    CylinderData{Height: height, Radius: radius, Position: position},
	})
}

// AddBoolean appends a visible boolean of two existing items.
func (g *Graph) AddBoolean(name string, op BooleanOp, left, right *Item) *Item {
	return g.AddItem(&Item{
		Name:    name,
		Visible: true,
		Data:    BooleanData{Op: op, Left: left.ID, Right: right.ID},
	})
}

// AddCut appends left minus right.
func (g *Graph) AddCut(name string, left, right *Item) *Item {
	return g.AddBoolean(name, OpCut, left, right)
}

// AddFuse appends the union of left and right.
func (g *Graph) AddFuse(name string, left, right *Item) *Item {
	return g.AddBoolean(name, OpFuse, left, right)
}

// AddCommon appends the intersection of left and right.
func (g *Graph) AddCommon(name string, left, right *Item) *Item {
	return g.AddBoolean(name, OpCommon, left, right)
}

// AddTransform appends a rotated and translated copy of target.
func (g *Graph) AddTransform(name string, target *Item, translation, rotation Vec3) *Item {
	return g.AddItem(&Item{
		Name:    name,
		Visible: true,
		Data:    TransformData{Target: target.ID, Translation: translation, Rotation: rotation},
	})
}

// SetVisible toggles display of an item. Hidden items are still built
// when other items depend on them.
func (g *Graph) SetVisible(id ItemID, visible bool) error {
	it := g.Get(id)
	if it == nil {
		return fmt.Errorf("graph: item %s not found", id)
	}
	it.Visible = visible
	return nil
}

// Update replaces the payload of an item, keeping its identity.
func (g *Graph) Update(id ItemID, data ItemData) error {
	it := g.Get(id)
	if it == nil {
		return fmt.Errorf("graph: item %s not found", id)
	}
	it.Data = data
	return nil
}

// Remove deletes an item. Items that still depend on it block removal.
func (g *Graph) Remove(id ItemID) error {
	idx := -1
	for i, it := range g.Items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("graph: item %s not found", id)
	}
	if deps := g.Dependents(id); len(deps) > 0 {
		return fmt.Errorf("graph: item %s is used by %q", id, deps[0].Name)
	}
	g.Items = append(g.Items[:idx], g.Items[idx+1:]...)
	return nil
}
