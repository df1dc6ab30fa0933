package scene

import (
	"fmt"
	"strings"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// hclParameter is the body of a parameter block.
type hclParameter struct {
	Default float64  `hcl:"default,optional"`
	Value   *float64 `hcl:"value,optional"`
}

// hclItem holds the attributes every item block shares. The rest of the
// body is decoded per kind.
type hclItem struct {
	ID      *int64   `hcl:"id,optional"`
	Visible *bool    `hcl:"visible,optional"`
	Remain  hcl.Body `hcl:",remain"`
}

type hclBox struct {
	Size     hcl.Expression `hcl:"size"`
	Position hcl.Expression `hcl:"position,optional"`
}

type hclCylinder struct {
	Height   hcl.Expression `hcl:"height"`
	Radius   hcl.Expression `hcl:"radius"`
	Position hcl.Expression `hcl:"position,optional"`
}

type hclBoolean struct {
	Left  string `hcl:"left"`
	Right string `hcl:"right"`
}

type hclTransform struct {
	Target    string         `hcl:"target"`
	Translate hcl.Expression `hcl:"translate,optional"`
	Rotate    hcl.Expression `hcl:"rotate,optional"`
}

var booleanOps = map[string]graph.BooleanOp{
	"cut":    graph.OpCut,
	"fuse":   graph.OpFuse,
	"common": graph.OpCommon,
}

func isItemBlock(typ string) bool {
	switch typ {
	case "box", "cylinder", "transform":
		return true
	}
	_, ok := booleanOps[typ]
	return ok
}

// declared is an item block after its header has been decoded.
type declared struct {
	block *hclsyntax.Block
	item  *graph.Item
	body  hcl.Body
}

// decodeScene decodes in two passes: headers first, so that every item
// has an id before references between items are resolved.
func decodeScene(body *hclsyntax.Body) (*graph.Graph, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	g := graph.New()

	for _, attr := range body.Attributes {
		rng := attr.SrcRange
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected attribute",
			Detail:   fmt.Sprintf("Scenes contain only blocks; %q is not allowed at top level.", attr.Name),
			Subject:  &rng,
		})
	}

	var items []*declared
	byName := make(map[string]*declared)
	for _, blk := range body.Blocks {
		switch {
		case blk.Type == "parameter":
			diags = append(diags, decodeParameter(g, blk)...)
		case isItemBlock(blk.Type):
			d, hdiags := decodeHeader(blk)
			diags = append(diags, hdiags...)
			if d == nil {
				continue
			}
			if prev, dup := byName[d.item.Name]; dup {
				rng := blk.LabelRanges[0]
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate item name",
					Detail:   fmt.Sprintf("An item named %q was already declared at %s.", d.item.Name, prev.block.DefRange()),
					Subject:  &rng,
				})
				continue
			}
			byName[d.item.Name] = d
			items = append(items, d)
		default:
			rng := blk.DefRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected here.", blk.Type),
				Subject:  &rng,
			})
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	diags = append(diags, assignIDs(items)...)
	if diags.HasErrors() {
		return nil, diags
	}

	ids := make(map[string]graph.ItemID, len(items))
	for _, d := range items {
		ids[d.item.Name] = d.item.ID
	}
	for _, d := range items {
		data, bdiags := decodeItemBody(d, ids)
		diags = append(diags, bdiags...)
		d.item.Data = data
		g.AddItem(d.item)
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return g, diags
}

func decodeParameter(g *graph.Graph, blk *hclsyntax.Block) hcl.Diagnostics {
	var diags hcl.Diagnostics
	if len(blk.Labels) != 1 {
		rng := blk.DefRange()
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid parameter block",
			Detail:   "A parameter block needs exactly one label: its id.",
			Subject:  &rng,
		})
	}

	var p hclParameter
	diags = append(diags, gohcl.DecodeBody(blk.Body, nil, &p)...)
	if diags.HasErrors() {
		return diags
	}

	id := blk.Labels[0]
	if err := g.AddParameter(id, p.Default); err != nil {
		rng := blk.LabelRanges[0]
		return append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid parameter",
			Detail:   err.Error(),
			Subject:  &rng,
		})
	}
	if p.Value != nil {
		_ = g.SetParameter(id, *p.Value)
	}
	return diags
}

func decodeHeader(blk *hclsyntax.Block) (*declared, hcl.Diagnostics) {
	if len(blk.Labels) != 1 || blk.Labels[0] == "" {
		rng := blk.DefRange()
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid item block",
			Detail:   fmt.Sprintf("A %s block needs exactly one non-empty label: its name.", blk.Type),
			Subject:  &rng,
		}}
	}

	var h hclItem
	diags := gohcl.DecodeBody(blk.Body, nil, &h)
	if diags.HasErrors() {
		return nil, diags
	}

	it := &graph.Item{Name: blk.Labels[0], Visible: true}
	if h.Visible != nil {
		it.Visible = *h.Visible
	}
	if h.ID != nil {
		if *h.ID <= 0 {
			rng := blk.DefRange()
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid item id",
				Detail:   fmt.Sprintf("Item ids must be positive, got %d.", *h.ID),
				Subject:  &rng,
			})
		}
		it.ID = graph.ItemID(*h.ID)
	}
	return &declared{block: blk, item: it, body: h.Remain}, diags
}

// assignIDs checks explicit ids for duplicates and numbers the remaining
// items after the largest explicit id, in source order.
func assignIDs(items []*declared) hcl.Diagnostics {
	var diags hcl.Diagnostics
	owner := make(map[graph.ItemID]*declared)
	var max graph.ItemID
	for _, d := range items {
		id := d.item.ID
		if id.IsZero() {
			continue
		}
		if prev, dup := owner[id]; dup {
			rng := d.block.DefRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate item id",
				Detail:   fmt.Sprintf("Id %s is already used by %q.", id, prev.item.Name),
				Subject:  &rng,
			})
			continue
		}
		owner[id] = d
		if id > max {
			max = id
		}
	}
	for _, d := range items {
		if d.item.ID.IsZero() {
			max++
			d.item.ID = max
		}
	}
	return diags
}

func decodeItemBody(d *declared, ids map[string]graph.ItemID) (graph.ItemData, hcl.Diagnostics) {
	typ := d.block.Type
	switch typ {
	case "box":
		var b hclBox
		diags := gohcl.DecodeBody(d.body, nil, &b)
		diags = append(diags, requireAttrs(d, "size")...)
		if diags.HasErrors() {
			return nil, diags
		}
		size, sdiags := vecAttr(b.Size, "size")
		pos, pdiags := vecAttr(b.Position, "position")
		diags = append(diags, sdiags...)
		return graph.BoxData{Size: size, Position: pos}, append(diags, pdiags...)

	case "cylinder":
		var c hclCylinder
		diags := gohcl.DecodeBody(d.body, nil, &c)
		diags = append(diags, requireAttrs(d, "height", "radius")...)
		if diags.HasErrors() {
			return nil, diags
		}
		h, hdiags := scalarAttr(c.Height, "height")
		r, rdiags := scalarAttr(c.Radius, "radius")
		pos, pdiags := vecAttr(c.Position, "position")
		diags = append(diags, hdiags...)
		diags = append(diags, rdiags...)
		return graph.CylinderData{Height: h, Radius: r, Position: pos}, append(diags, pdiags...)

	case "transform":
		var t hclTransform
		diags := gohcl.DecodeBody(d.body, nil, &t)
		if diags.HasErrors() {
			return nil, diags
		}
		target, tdiags := resolve(d, ids, t.Target, "target")
		move, mdiags := vecAttr(t.Translate, "translate")
		rot, rdiags := vecAttr(t.Rotate, "rotate")
		diags = append(diags, tdiags...)
		diags = append(diags, mdiags...)
		return graph.TransformData{Target: target, Translation: move, Rotation: rot}, append(diags, rdiags...)

	default:
		var b hclBoolean
		diags := gohcl.DecodeBody(d.body, nil, &b)
		if diags.HasErrors() {
			return nil, diags
		}
		left, ldiags := resolve(d, ids, b.Left, "left")
		right, rdiags := resolve(d, ids, b.Right, "right")
		diags = append(diags, ldiags...)
		return graph.BooleanData{Op: booleanOps[typ], Left: left, Right: right}, append(diags, rdiags...)
	}
}

// requireAttrs reports required attributes missing from the block.
// gohcl leaves absent hcl.Expression fields as a null expression instead
// of failing, so these are checked against the syntax tree.
func requireAttrs(d *declared, attrs ...string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, attr := range attrs {
		if _, ok := d.block.Body.Attributes[attr]; ok {
			continue
		}
		rng := d.block.DefRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing required argument",
			Detail:   fmt.Sprintf("The argument %q is required, but no definition was found.", attr),
			Subject:  &rng,
		})
	}
	return diags
}

// resolve maps an item name to its id.
func resolve(d *declared, ids map[string]graph.ItemID, name, attr string) (graph.ItemID, hcl.Diagnostics) {
	if id, ok := ids[name]; ok {
		return id, nil
	}
	rng := d.block.Body.SrcRange
	if a, ok := d.block.Body.Attributes[attr]; ok {
		rng = a.Expr.Range()
	}
	return 0, hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Unknown item",
		Detail:   fmt.Sprintf("%s %q refers to %q, which is not declared in this scene.", d.block.Type, d.item.Name, name),
		Subject:  &rng,
	}}
}

// scalarAttr converts a number or expression string. A missing optional
// attribute yields the empty Expr, which evaluates to zero.
func scalarAttr(expr hcl.Expression, attr string) (graph.Expr, hcl.Diagnostics) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	return scalarValue(v, expr.Range(), attr)
}

func scalarValue(v cty.Value, rng hcl.Range, attr string) (graph.Expr, hcl.Diagnostics) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsKnown() {
		return "", invalid(rng, attr, "value is not known")
	}
	switch {
	case v.Type().Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return graph.Num(f), nil
	case v.Type().Equals(cty.String):
		s := strings.TrimSpace(v.AsString())
		if s == "" {
			return "", invalid(rng, attr, "expression is empty")
		}
		return graph.Expr(s), nil
	default:
		return "", invalid(rng, attr, fmt.Sprintf("want a number or an expression string, got %s", v.Type().FriendlyName()))
	}
}

// vecAttr converts a three-element list or tuple.
func vecAttr(expr hcl.Expression, attr string) (graph.Vec3, hcl.Diagnostics) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return graph.Vec3{}, diags
	}
	if v.IsNull() {
		return graph.Vec3{}, nil
	}
	rng := expr.Range()
	ty := v.Type()
	if !v.IsKnown() || !(ty.IsTupleType() || ty.IsListType()) || v.LengthInt() != 3 {
		return graph.Vec3{}, invalid(rng, attr, "want a list of three values")
	}

	elems := v.AsValueSlice()
	var out [3]graph.Expr
	for i, e := range elems {
		s, ediags := scalarValue(e, rng, fmt.Sprintf("%s[%d]", attr, i))
		diags = append(diags, ediags...)
		out[i] = s
	}
	return graph.Vec3{X: out[0], Y: out[1], Z: out[2]}, diags
}

func invalid(rng hcl.Range, attr, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid %s", attr),
		Detail:   detail,
		Subject:  &rng,
	}}
}
