package plan

import (
	"fmt"
	"strings"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
)

// cylinderSegments is passed to kernels that facet cylinders.
const cylinderSegments = 64

// namingContext tracks which items have been declared so far in one
// compilation. Items may only refer to names already in it.
type namingContext struct {
	declared map[graph.ItemID]bool
}

func newNamingContext() *namingContext {
	return &namingContext{declared: make(map[graph.ItemID]bool)}
}

// symbol is the plan-level variable that holds an item's solid.
func symbol(id graph.ItemID) string {
	return "id_" + id.String()
}

func (c *namingContext) compileItem(it *graph.Item) Step {
	expr, build := c.construct(it)

	var src strings.Builder
	fmt.Fprintf(&src, "(def %s %s)", symbol(it.ID), expr)
	if it.Visible {
		fmt.Fprintf(&src, "\n(display %s %s)", symbol(it.ID), it.ID)
	}

	// Declared after its own constructor so a self-reference fails.
	c.declared[it.ID] = true

	return Step{
		ItemID:  it.ID,
		Name:    it.Name,
		Visible: it.Visible,
		Source:  src.String(),
		build:   build,
	}
}

// ref resolves a sibling reference. Undeclared references still render
// but fail at run time.
func (c *namingContext) ref(id graph.ItemID) (string, func(Scope) (kernel.Solid, error)) {
	if !c.declared[id] {
		return symbol(id), func(Scope) (kernel.Solid, error) {
			return nil, fmt.Errorf("reference to undeclared item %s", id)
		}
	}
	return symbol(id), func(sc Scope) (kernel.Solid, error) {
		return sc.Solid(id)
	}
}

func (c *namingContext) construct(it *graph.Item) (string, func(Scope) (kernel.Solid, error)) {
	switch d := it.Data.(type) {
	case graph.BoxData:
		return compileBox(d)
	case graph.CylinderData:
		return compileCylinder(d)
	case graph.BooleanData:
		return c.compileBoolean(d)
	case graph.TransformData:
		return c.compileTransform(d)
	default:
		kind := fmt.Sprintf("%T", it.Data)
		return fmt.Sprintf("(unsupported %q)", kind), func(Scope) (kernel.Solid, error) {
			return nil, fmt.Errorf("unsupported item data %s", kind)
		}
	}
}

func renderVec(v graph.Vec3) string {
	return fmt.Sprintf("(vec3 %s %s %s)", v.X, v.Y, v.Z)
}

// evalVec evaluates the three components of v in order.
func evalVec(sc Scope, v graph.Vec3) (x, y, z float64, err error) {
	if x, err = sc.Eval(v.X); err != nil {
		return 0, 0, 0, fmt.Errorf("x: %w", err)
	}
	if y, err = sc.Eval(v.Y); err != nil {
		return 0, 0, 0, fmt.Errorf("y: %w", err)
	}
	if z, err = sc.Eval(v.Z); err != nil {
		return 0, 0, 0, fmt.Errorf("z: %w", err)
	}
	return x, y, z, nil
}

// place translates s unless the offset is a literal zero.
func place(sc Scope, s kernel.Solid, at graph.Vec3) (kernel.Solid, error) {
	if at.IsZero() {
		return s, nil
	}
	x, y, z, err := evalVec(sc, at)
	if err != nil {
		return nil, fmt.Errorf("position %w", err)
	}
	return sc.Kernel().Translate(s, x, y, z)
}

func compileBox(d graph.BoxData) (string, func(Scope) (kernel.Solid, error)) {
	expr := fmt.Sprintf("(box :size %s :at %s)", renderVec(d.Size), renderVec(d.Position))
	return expr, func(sc Scope) (kernel.Solid, error) {
		x, y, z, err := evalVec(sc, d.Size)
		if err != nil {
			return nil, fmt.Errorf("box: size %w", err)
		}
		s, err := sc.Kernel().Box(x, y, z)
		if err != nil {
			return nil, err
		}
		return place(sc, s, d.Position)
	}
}

func compileCylinder(d graph.CylinderData) (string, func(Scope) (kernel.Solid, error)) {
	expr := fmt.Sprintf("(cylinder :height %s :radius %s :at %s)", d.Height, d.Radius, renderVec(d.Position))
	return expr, func(sc Scope) (kernel.Solid, error) {
		h, err := sc.Eval(d.Height)
		if err != nil {
			return nil, fmt.Errorf("cylinder: height: %w", err)
		}
		r, err := sc.Eval(d.Radius)
		if err != nil {
			return nil, fmt.Errorf("cylinder: radius: %w", err)
		}
		s, err := sc.Kernel().Cylinder(h, r, cylinderSegments)
		if err != nil {
			return nil, err
		}
		return place(sc, s, d.Position)
	}
}

func (c *namingContext) compileBoolean(d graph.BooleanData) (string, func(Scope) (kernel.Solid, error)) {
	leftSym, left := c.ref(d.Left)
	rightSym, right := c.ref(d.Right)
	op := d.Op
	expr := fmt.Sprintf("(%s %s %s)", op, leftSym, rightSym)

	return expr, func(sc Scope) (kernel.Solid, error) {
		a, err := left(sc)
		if err != nil {
			return nil, fmt.Errorf("%s: left: %w", op, err)
		}
		b, err := right(sc)
		if err != nil {
			return nil, fmt.Errorf("%s: right: %w", op, err)
		}
		k := sc.Kernel()
		switch op {
		case graph.OpCut:
			return k.Difference(a, b)
		case graph.OpFuse:
			return k.Union(a, b)
		case graph.OpCommon:
			return k.Intersection(a, b)
		default:
			return nil, fmt.Errorf("unknown boolean operation %d", int(op))
		}
	}
}

func (c *namingContext) compileTransform(d graph.TransformData) (string, func(Scope) (kernel.Solid, error)) {
	targetSym, target := c.ref(d.Target)
	expr := fmt.Sprintf("(transform %s :rotate %s :translate %s)",
		targetSym, renderVec(d.Rotation), renderVec(d.Translation))

	return expr, func(sc Scope) (kernel.Solid, error) {
		s, err := target(sc)
		if err != nil {
			return nil, fmt.Errorf("transform: target: %w", err)
		}
		if !d.Rotation.IsZero() {
			x, y, z, err := evalVec(sc, d.Rotation)
			if err != nil {
				return nil, fmt.Errorf("transform: rotation %w", err)
			}
			if s, err = sc.Kernel().Rotate(s, x, y, z); err != nil {
				return nil, err
			}
		}
		return place(sc, s, d.Translation)
	}
}
