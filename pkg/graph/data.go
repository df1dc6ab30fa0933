package graph

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is an axis-aligned box. Size is the extent along X, Y, Z;
// Position is the minimum corner.
type BoxData struct {
	Size     Vec3 `json:"size"`
	Position Vec3 `json:"position"`
}

func (BoxData) Kind() ItemKind { return KindBox }
func (BoxData) refs() []ItemID { return nil }

// CylinderData is a cylinder along Z, centered on Position.
type CylinderData struct {
	Height   Expr `json:"height"`
	Radius   Expr `json:"radius"`
	Position Vec3 `json:"position"`
}

func (CylinderData) Kind() ItemKind { return KindCylinder }
func (CylinderData) refs() []ItemID { return nil }

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

// BooleanOp enumerates CSG operations.
type BooleanOp int

const (
	OpCut    BooleanOp = iota // left minus right
	OpFuse                    // union
	OpCommon                  // intersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpCut:
		return "cut"
	case OpFuse:
		return "fuse"
	case OpCommon:
		return "common"
	default:
		return "unknown"
	}
}

// BooleanData combines two previously declared items.
type BooleanData struct {
	Op    BooleanOp `json:"op"`
	Left  ItemID    `json:"left"`
	Right ItemID    `json:"right"`
}

func (BooleanData) Kind() ItemKind   { return KindBoolean }
func (d BooleanData) refs() []ItemID { return []ItemID{d.Left, d.Right} }

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData rotates (Euler degrees, applied first) and then
// translates a previously declared item.
type TransformData struct {
	Target      ItemID `json:"target"`
	Translation Vec3   `json:"translation"`
	Rotation    Vec3   `json:"rotation"`
}

func (TransformData) Kind() ItemKind   { return KindTransform }
func (d TransformData) refs() []ItemID { return []ItemID{d.Target} }
