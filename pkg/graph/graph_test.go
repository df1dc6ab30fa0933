package graph

import "testing"

// buildCutScene creates the box / cylinder / cut graph used across tests.
func buildCutScene() *Graph {
	g := New()
	_ = g.AddParameter("radius", 20)
	b := g.AddBox("B", V(100, 200, 200), V(0, 0, 0))
	c := g.AddCylinder("C", Num(40), Expr("radius"), V(50, 50, 10))
	g.AddCut("S", b, c)
	return g
}

func TestNewGraph(t *testing.T) {
	g := New()
	if g.ItemCount() != 0 {
		t.Errorf("empty graph should have 0 items, got %d", g.ItemCount())
	}
	if len(g.Parameters) != 0 {
		t.Errorf("empty graph should have 0 parameters, got %d", len(g.Parameters))
	}
}

func TestAddItemAssignsIDsAndNames(t *testing.T) {
	g := New()
	a := g.AddBox("", V(1, 1, 1), Vec3{})
	b := g.AddBox("lid", V(1, 1, 1), Vec3{})
	c := g.AddItem(&Item{ID: 10, Visible: true, Data: CylinderData{Height: "1", Radius: "1"}})
	d := g.AddFuse("", a, b)

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %s, %s; want 1, 2", a.ID, b.ID)
	}
	if a.Name != "box1" {
		t.Errorf("generated name = %q, want %q", a.Name, "box1")
	}
	if b.Name != "lid" {
		t.Errorf("explicit name = %q, want %q", b.Name, "lid")
	}
	if c.ID != 10 {
		t.Errorf("explicit id = %s, want 10", c.ID)
	}
	if d.ID != 11 {
		t.Errorf("id after explicit 10 = %s, want 11", d.ID)
	}
	if d.Name != "boolean11" {
		t.Errorf("generated boolean name = %q, want %q", d.Name, "boolean11")
	}
}

func TestGetAndLookup(t *testing.T) {
	g := buildCutScene()

	s := g.Lookup("S")
	if s == nil {
		t.Fatal("Lookup(S) returned nil")
	}
	if got := g.Get(s.ID); got != s {
		t.Errorf("Get(%s) = %v, want %v", s.ID, got, s)
	}
	if g.Lookup("missing") != nil {
		t.Error("Lookup(missing) should return nil")
	}
	if g.Get(99) != nil {
		t.Error("Get(99) should return nil")
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup should panic for an unknown name")
		}
	}()
	New().MustLookup("nope")
}

func TestDependenciesAndDependents(t *testing.T) {
	g := buildCutScene()
	b, c, s := g.MustLookup("B"), g.MustLookup("C"), g.MustLookup("S")

	deps := s.Dependencies()
	if len(deps) != 2 || deps[0] != b.ID || deps[1] != c.ID {
		t.Errorf("S dependencies = %v, want [%s %s]", deps, b.ID, c.ID)
	}
	if len(b.Dependencies()) != 0 {
		t.Errorf("box should have no dependencies, got %v", b.Dependencies())
	}

	users := g.Dependents(b.ID)
	if len(users) != 1 || users[0] != s {
		t.Errorf("Dependents(B) = %v, want [S]", users)
	}
	if len(g.Dependents(s.ID)) != 0 {
		t.Error("S should have no dependents")
	}
}

func TestVisibleItems(t *testing.T) {
	g := buildCutScene()
	if err := g.SetVisible(g.MustLookup("B").ID, false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}

	vis := g.VisibleItems()
	if len(vis) != 2 {
		t.Fatalf("visible count = %d, want 2", len(vis))
	}
	if vis[0].Name != "C" || vis[1].Name != "S" {
		t.Errorf("visible order = [%s %s], want [C S]", vis[0].Name, vis[1].Name)
	}
	if err := g.SetVisible(99, true); err == nil {
		t.Error("SetVisible on a missing item should fail")
	}
}

func TestParameters(t *testing.T) {
	g := buildCutScene()

	p, ok := g.Parameter("radius")
	if !ok {
		t.Fatal("radius not found")
	}
	if p.Effective() != 20 {
		t.Errorf("Effective() = %g, want default 20", p.Effective())
	}

	if err := g.SetParameter("radius", 21); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	p, _ = g.Parameter("radius")
	if p.Effective() != 21 {
		t.Errorf("Effective() after set = %g, want 21", p.Effective())
	}

	if err := g.ResetParameter("radius"); err != nil {
		t.Fatalf("ResetParameter: %v", err)
	}
	p, _ = g.Parameter("radius")
	if p.Value != nil || p.Effective() != 20 {
		t.Errorf("after reset: value = %v, effective = %g", p.Value, p.Effective())
	}

	if err := g.SetParameter("missing", 1); err == nil {
		t.Error("SetParameter on unknown id should fail")
	}
	if err := g.AddParameter("radius", 5); err == nil {
		t.Error("duplicate AddParameter should fail")
	}
	if err := g.AddParameter("2fast", 5); err == nil {
		t.Error("AddParameter with invalid id should fail")
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	g := buildCutScene()
	b := g.MustLookup("B")
	if err := g.Update(b.ID, BoxData{Size: V(1, 2, 3)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := g.Get(b.ID).Data.(BoxData)
	if got.Size != V(1, 2, 3) {
		t.Errorf("size = %v, want 1x2x3", got.Size)
	}
	if err := g.Update(99, BoxData{}); err == nil {
		t.Error("Update on missing item should fail")
	}
}

func TestRemove(t *testing.T) {
	g := buildCutScene()
	b, s := g.MustLookup("B"), g.MustLookup("S")

	if err := g.Remove(b.ID); err == nil {
		t.Error("removing an item in use should fail")
	}
	if err := g.Remove(s.ID); err != nil {
		t.Fatalf("Remove(S): %v", err)
	}
	if err := g.Remove(b.ID); err != nil {
		t.Fatalf("Remove(B) after S is gone: %v", err)
	}
	if g.ItemCount() != 1 {
		t.Errorf("item count = %d, want 1", g.ItemCount())
	}
	if err := g.Remove(b.ID); err == nil {
		t.Error("removing a missing item should fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := buildCutScene()
	_ = g.SetParameter("radius", 30)
	c := g.Clone()

	_ = g.SetParameter("radius", 40)
	_ = g.SetVisible(g.MustLookup("S").ID, false)
	g.AddBox("extra", V(1, 1, 1), Vec3{})

	p, _ := c.Parameter("radius")
	if p.Effective() != 30 {
		t.Errorf("clone parameter = %g, want 30", p.Effective())
	}
	if !c.MustLookup("S").Visible {
		t.Error("clone visibility changed with the original")
	}
	if c.ItemCount() != 3 {
		t.Errorf("clone item count = %d, want 3", c.ItemCount())
	}
}

func TestExpr(t *testing.T) {
	tests := []struct {
		expr    Expr
		want    float64
		literal bool
		str     string
	}{
		{"", 0, true, "0"},
		{"20", 20, true, "20"},
		{" -1.5 ", -1.5, true, "-1.5"},
		{"radius", 0, false, "radius"},
		{"(+ radius 1)", 0, false, "(+ radius 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			v, ok := tt.expr.Literal()
			if ok != tt.literal || v != tt.want {
				t.Errorf("Literal() = %g, %v; want %g, %v", v, ok, tt.want, tt.literal)
			}
			if got := tt.expr.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestNumFormatting(t *testing.T) {
	tests := []struct {
		v    float64
		want Expr
	}{
		{20, "20"},
		{0.1, "0.1"},
		{-3.25, "-3.25"},
		{1e21, "1000000000000000000000"},
	}
	for _, tt := range tests {
		if got := Num(tt.v); got != tt.want {
			t.Errorf("Num(%g) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestVec3IsZero(t *testing.T) {
	if !(Vec3{}).IsZero() {
		t.Error("empty Vec3 should be zero")
	}
	if !V(0, 0, 0).IsZero() {
		t.Error("V(0,0,0) should be zero")
	}
	if V(0, 1, 0).IsZero() {
		t.Error("V(0,1,0) should not be zero")
	}
	if (Vec3{X: "offset"}).IsZero() {
		t.Error("expression component should not count as zero")
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{KindBox.String(), "box"},
		{KindCylinder.String(), "cylinder"},
		{KindBoolean.String(), "boolean"},
		{KindTransform.String(), "transform"},
		{ItemKind(42).String(), "unknown"},
		{OpCut.String(), "cut"},
		{OpFuse.String(), "fuse"},
		{OpCommon.String(), "common"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
