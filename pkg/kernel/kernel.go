// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling, boolean
// operations, content hashing and meshing behind this interface. The
// kernel abstraction allows swapping backends without changing the
// recompute pipeline.
package kernel

import "errors"

// ErrForeignSolid is returned when a kernel is handed a Solid that was
// not produced by that kernel.
var ErrForeignSolid = errors.New("kernel: solid was not created by this kernel")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Primitives and booleans return an error instead of panicking when their
// inputs are invalid (non-positive dimensions, nil operands), so that a
// single bad item can be isolated by the caller.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64, segments int) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) (Solid, error)
	Rotate(s Solid, x, y, z float64) (Solid, error) // Euler angles in degrees

	// Hash returns the content identity token of a solid. Two solids built
	// from the same operations and parameters hash identically.
	Hash(s Solid) (string, error)

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
