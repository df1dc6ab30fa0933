package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2: geometric validation
// ---------------------------------------------------------------------------

// validateGeometry checks literal attributes. Expressions over parameters
// are only known at evaluation time and are skipped here.
func validateGeometry(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePositiveDimensions(g)...)
	errs = append(errs, validateBooleanOperands(g)...)
	return errs
}

// validatePositiveDimensions reports literal box sizes and cylinder
// dimensions that are zero or negative. The kernel would reject them.
func validatePositiveDimensions(g *Graph) []ValidationError {
	var errs []ValidationError
	check := func(it *Item, label string, e Expr) {
		v, ok := e.Literal()
		if !ok || v > 0 {
			return
		}
		errs = append(errs, ValidationError{
			ItemID:   it.ID,
			Message:  fmt.Sprintf("%s %s is %s, must be positive", it.Kind(), label, FormatNumber(v)),
			Severity: SeverityError,
		})
	}

	for _, it := range g.Items {
		switch d := it.Data.(type) {
		case BoxData:
			check(it, "size X", d.Size.X)
			check(it, "size Y", d.Size.Y)
			check(it, "size Z", d.Size.Z)
		case CylinderData:
			check(it, "height", d.Height)
			check(it, "radius", d.Radius)
		}
	}
	return errs
}

// validateBooleanOperands warns when a boolean uses the same item twice.
func validateBooleanOperands(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, it := range g.Items {
		d, ok := it.Data.(BooleanData)
		if !ok || d.Left != d.Right {
			continue
		}
		errs = append(errs, ValidationError{
			ItemID:   it.ID,
			Message:  fmt.Sprintf("%s uses item %s as both operands", d.Op, d.Left),
			Severity: SeverityWarning,
		})
	}
	return errs
}
