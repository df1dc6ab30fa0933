package graph

import (
	"strings"
	"testing"
)

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateCleanGraph(t *testing.T) {
	g := buildCutScene()
	if errs := Validate(g); len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
	if r := ValidateAll(g); !r.OK() || len(r.Warnings) != 0 {
		t.Errorf("ValidateAll = %+v, want clean", r)
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "a", Visible: true, Data: BoxData{Size: V(1, 1, 1)}})
	g.AddItem(&Item{ID: 1, Name: "b", Visible: true, Data: BoxData{Size: V(1, 1, 1)}})

	if errs := Validate(g); !hasError(errs, "duplicate item id") {
		t.Errorf("expected duplicate id error, got %v", errs)
	}
}

func TestValidateNonPositiveID(t *testing.T) {
	g := New()
	g.Items = append(g.Items, &Item{ID: -2, Name: "neg", Visible: true, Data: BoxData{Size: V(1, 1, 1)}})

	if errs := Validate(g); !hasError(errs, "non-positive id") {
		t.Errorf("expected non-positive id error, got %v", errs)
	}
}

func TestValidateMissingData(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "empty", Visible: true})

	if errs := Validate(g); !hasError(errs, "no data") {
		t.Errorf("expected missing data error, got %v", errs)
	}
}

func TestValidateDuplicateNames(t *testing.T) {
	g := New()
	g.AddBox("dup", V(1, 1, 1), Vec3{})
	g.AddBox("dup", V(2, 2, 2), Vec3{})

	errs := Validate(g)
	if !hasError(errs, `duplicate name "dup"`) {
		t.Errorf("expected duplicate name error, got %v", errs)
	}
	n := 0
	for _, e := range errs {
		if strings.Contains(e.Message, "duplicate name") {
			n++
		}
	}
	if n != 1 {
		t.Errorf("duplicate name reported %d times, want 1", n)
	}
}

func TestValidateParameters(t *testing.T) {
	g := New()
	g.Parameters = []Parameter{{ID: "ok"}, {ID: "ok"}, {ID: "has space"}}

	errs := Validate(g)
	if !hasError(errs, `duplicate parameter "ok"`) {
		t.Errorf("expected duplicate parameter error, got %v", errs)
	}
	if !hasError(errs, `invalid parameter id "has space"`) {
		t.Errorf("expected invalid parameter id error, got %v", errs)
	}
}

func TestValidParameterID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"radius", true},
		{"wall-thickness", true},
		{"r_2", true},
		{"", false},
		{"2r", false},
		{"a b", false},
		{"(x)", false},
	}
	for _, tt := range tests {
		if got := ValidParameterID(tt.id); got != tt.want {
			t.Errorf("ValidParameterID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestValidateDanglingReference(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "box", Visible: true, Data: BoxData{Size: V(1, 1, 1)}})
	g.AddItem(&Item{ID: 2, Name: "cut", Visible: true, Data: BooleanData{Op: OpCut, Left: 1, Right: 7}})

	if errs := Validate(g); !hasError(errs, "reference 7 does not exist") {
		t.Errorf("expected dangling reference error, got %v", errs)
	}
}

func TestValidateForwardReference(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "move", Visible: true, Data: TransformData{Target: 2}})
	g.AddItem(&Item{ID: 2, Name: "box", Visible: false, Data: BoxData{Size: V(1, 1, 1)}})

	if errs := Validate(g); !hasError(errs, "declared after its user") {
		t.Errorf("expected forward reference error, got %v", errs)
	}
}

func TestValidateSelfReference(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "loop", Visible: true, Data: TransformData{Target: 1}})

	errs := Validate(g)
	if !hasError(errs, "references itself") {
		t.Errorf("expected self reference error, got %v", errs)
	}
	if !hasError(errs, "cycle detected") {
		t.Errorf("expected cycle error, got %v", errs)
	}
}

func TestValidateCycle(t *testing.T) {
	g := New()
	g.AddItem(&Item{ID: 1, Name: "a", Visible: true, Data: TransformData{Target: 2}})
	g.AddItem(&Item{ID: 2, Name: "b", Visible: true, Data: TransformData{Target: 1}})

	errs := Validate(g)
	cycles := 0
	for _, e := range errs {
		if strings.Contains(e.Message, "cycle detected") {
			cycles++
		}
	}
	if cycles != 1 {
		t.Errorf("cycle reported %d times, want 1: %v", cycles, errs)
	}
}

func TestValidateHiddenUnused(t *testing.T) {
	g := buildCutScene()
	_ = g.SetVisible(g.MustLookup("B").ID, false)
	if errs := Validate(g); len(errs) != 0 {
		t.Errorf("hidden operand in use should not warn, got %v", errs)
	}

	lone := g.AddBox("lone", V(1, 1, 1), Vec3{})
	_ = g.SetVisible(lone.ID, false)
	if errs := Validate(g); !hasWarning(errs, `hidden item "lone"`) {
		t.Errorf("expected hidden item warning, got %v", errs)
	}
}

func TestValidateGeometry(t *testing.T) {
	g := New()
	g.AddBox("flat", V(10, 0, 10), Vec3{})
	g.AddCylinder("neg", Num(-1), Expr("radius"), Vec3{})
	b := g.AddBox("b", V(1, 1, 1), Vec3{})
	g.AddFuse("twice", b, b)

	r := ValidateAll(g)
	if r.OK() {
		t.Fatal("expected geometry errors")
	}
	if !hasError(r.Errors, "box size Y is 0") {
		t.Errorf("expected box size error, got %v", r.Errors)
	}
	if !hasError(r.Errors, "cylinder height is -1") {
		t.Errorf("expected cylinder height error, got %v", r.Errors)
	}
	if hasError(r.Errors, "radius") {
		t.Errorf("expression radius should not be checked, got %v", r.Errors)
	}
	if !hasWarning(r.Warnings, "both operands") {
		t.Errorf("expected same-operand warning, got %v", r.Warnings)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{ItemID: 3, Message: "boom", Severity: SeverityError}
	if got := e.Error(); got != "[error] item 3: boom" {
		t.Errorf("Error() = %q", got)
	}
	w := ValidationError{Message: "note", Severity: SeverityWarning}
	if got := w.Error(); got != "[warning] note" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationResultAll(t *testing.T) {
	r := ValidationResult{
		Errors:   []ValidationError{{Message: "e"}},
		Warnings: []ValidationError{{Message: "w", Severity: SeverityWarning}},
	}
	all := r.All()
	if len(all) != 2 || all[0].Message != "e" || all[1].Message != "w" {
		t.Errorf("All() = %v", all)
	}
}
