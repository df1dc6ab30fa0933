package graph

import (
	"strconv"
	"strings"
)

// ItemID identifies an item in the geometry graph. IDs are positive
// integers; the zero value means "unassigned".
type ItemID int64

// IsZero reports whether the ID is unassigned.
func (id ItemID) IsZero() bool {
	return id == 0
}

func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Expr is a scalar attribute. It is either a numeric literal ("20",
// "-1.5") or a Lisp expression over parameter ids ("radius",
// "(+ radius 1)"). The empty Expr evaluates to zero.
type Expr string

// Num returns the literal Expr for v. Formatting is stable so that equal
// values always render identically.
func Num(v float64) Expr {
	return Expr(FormatNumber(v))
}

// FormatNumber renders v without exponent notation.
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0 // fold -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Literal returns the value of a numeric literal Expr. ok is false for
// expressions that need evaluation.
func (e Expr) Literal() (v float64, ok bool) {
	s := strings.TrimSpace(string(e))
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String returns the source form, with the empty Expr rendered as "0".
func (e Expr) String() string {
	s := strings.TrimSpace(string(e))
	if s == "" {
		return "0"
	}
	return s
}

// Vec3 is a 3-component vector of scalar expressions.
type Vec3 struct {
	X Expr `json:"x"`
	Y Expr `json:"y"`
	Z Expr `json:"z"`
}

// V builds a literal Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: Num(x), Y: Num(y), Z: Num(z)}
}

// IsZero reports whether every component is a literal zero.
func (v Vec3) IsZero() bool {
	for _, e := range []Expr{v.X, v.Y, v.Z} {
		if f, ok := e.Literal(); !ok || f != 0 {
			return false
		}
	}
	return true
}

// Parameter is a named scalar bound into the evaluation scope.
// Value is nil until the user sets it; the Default applies until then.
type Parameter struct {
	ID      string   `json:"id"`
	Value   *float64 `json:"value,omitempty"`
	Default float64  `json:"default"`
}

// Effective returns Value when set, otherwise Default.
func (p Parameter) Effective() float64 {
	if p.Value != nil {
		return *p.Value
	}
	return p.Default
}
