package graph

// ItemKind enumerates the types of items in the geometry graph.
type ItemKind int

const (
	KindBox       ItemKind = iota // rectangular solid
	KindCylinder                  // cylindrical solid
	KindBoolean                   // cut / fuse / common of two items
	KindTransform                 // translate + rotate of one item
)

func (k ItemKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindBoolean:
		return "boolean"
	case KindTransform:
		return "transform"
	default:
		return "unknown"
	}
}

// Item is one node of the geometry graph.
type Item struct {
	ID      ItemID   `json:"id"`
	Name    string   `json:"name"`
	Visible bool     `json:"visible"`
	Data    ItemData `json:"data"`
}

// ItemData is the interface for kind-specific item payloads.
type ItemData interface {
	Kind() ItemKind
	// refs lists the items this payload takes as constructor arguments.
	refs() []ItemID
}

// Kind returns the kind of the item's payload.
func (it *Item) Kind() ItemKind {
	if it.Data == nil {
		return -1
	}
	return it.Data.Kind()
}

// Dependencies returns the upstream items this item is built from,
// in argument order.
func (it *Item) Dependencies() []ItemID {
	if it.Data == nil {
		return nil
	}
	return it.Data.refs()
}

// clone returns a copy of the item. Payloads are value types, so a
// shallow copy is independent of the original.
func (it *Item) clone() *Item {
	c := *it
	return &c
}
