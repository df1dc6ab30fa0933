package graph

import (
	"fmt"
	"regexp"
	"slices"
)

// ValidationSeverity indicates whether a validation finding means the
// graph is malformed or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // malformed graph
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ItemID   ItemID             // which item has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.ItemID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] item %s: %s", e.Severity, e.ItemID, e.Message)
}

// ValidationResult bundles errors and warnings from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// All returns errors followed by warnings.
func (r ValidationResult) All() []ValidationError {
	return append(slices.Clone(r.Errors), r.Warnings...)
}

var parameterIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidParameterID reports whether id can be bound as a parameter symbol.
func ValidParameterID(id string) bool {
	return parameterIDPattern.MatchString(id)
}

// Validate runs all Tier 1 structural checks and returns the findings.
// An empty slice means the graph is well formed. This function is
// read-only and never mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIDs(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateParameters(g)...)
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateHidden(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates
// errors from warnings.
func ValidateAll(g *Graph) ValidationResult {
	var result ValidationResult
	all := append(Validate(g), validateGeometry(g)...)
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateIDs checks that item IDs are positive and unique.
func validateIDs(g *Graph) []ValidationError {
	var errs []ValidationError
	seen := make(map[ItemID]bool)
	for _, it := range g.Items {
		if it.ID <= 0 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("item %q has non-positive id %d", it.Name, it.ID),
				Severity: SeverityError,
			})
			continue
		}
		if seen[it.ID] {
			errs = append(errs, ValidationError{
				ItemID:   it.ID,
				Message:  "duplicate item id",
				Severity: SeverityError,
			})
		}
		seen[it.ID] = true
		if it.Data == nil {
			errs = append(errs, ValidationError{
				ItemID:   it.ID,
				Message:  "item has no data",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that every item has a name and that no two items
// share one.
func validateNames(g *Graph) []ValidationError {
	var errs []ValidationError
	owners := make(map[string]int)
	for _, it := range g.Items {
		if it.Name == "" {
			errs = append(errs, ValidationError{
				ItemID:   it.ID,
				Message:  "item has no name",
				Severity: SeverityError,
			})
			continue
		}
		owners[it.Name]++
	}
	for _, it := range g.Items {
		if n := owners[it.Name]; n > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d items", it.Name, n),
				Severity: SeverityError,
			})
			owners[it.Name] = 0 // report once
		}
	}
	return errs
}

// validateParameters checks parameter ids for syntax and uniqueness.
func validateParameters(g *Graph) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, p := range g.Parameters {
		if !ValidParameterID(p.ID) {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("invalid parameter id %q", p.ID),
				Severity: SeverityError,
			})
		}
		if seen[p.ID] {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate parameter %q", p.ID),
				Severity: SeverityError,
			})
		}
		seen[p.ID] = true
	}
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray item during traversal, we have found a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	byID := make(map[ItemID]*Item, len(g.Items))
	for _, it := range g.Items {
		byID[it.ID] = it
	}

	color := make(map[ItemID]int)
	var errs []ValidationError

	var visit func(id ItemID) bool // returns true if cycle found
	visit = func(id ItemID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				ItemID:   id,
				Message:  fmt.Sprintf("cycle detected: item %s is part of a cycle", id),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		it, ok := byID[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, dep := range it.Dependencies() {
			if visit(dep) {
				return true
			}
		}
		color[id] = black
		return false
	}

	// Declaration order keeps the report deterministic.
	for _, it := range g.Items {
		if color[it.ID] == white {
			if visit(it.ID) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}
	return errs
}

// validateReferences checks that every referenced item exists and is
// declared before the item that uses it.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	position := make(map[ItemID]int, len(g.Items))
	for i, it := range g.Items {
		if _, dup := position[it.ID]; !dup {
			position[it.ID] = i
		}
	}

	for i, it := range g.Items {
		for _, dep := range it.Dependencies() {
			pos, ok := position[dep]
			switch {
			case !ok:
				errs = append(errs, ValidationError{
					ItemID:   it.ID,
					Message:  fmt.Sprintf("reference %s does not exist", dep),
					Severity: SeverityError,
				})
			case dep == it.ID:
				errs = append(errs, ValidationError{
					ItemID:   it.ID,
					Message:  "item references itself",
					Severity: SeverityError,
				})
			case pos > i:
				errs = append(errs, ValidationError{
					ItemID:   it.ID,
					Message:  fmt.Sprintf("reference %s is declared after its user", dep),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateHidden warns about hidden items that nothing uses: they cost
// nothing but are never displayed either.
func validateHidden(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, it := range g.Items {
		if it.Visible || len(g.Dependents(it.ID)) > 0 {
			continue
		}
		errs = append(errs, ValidationError{
			ItemID:   it.ID,
			Message:  fmt.Sprintf("hidden item %q is not used by any other item", it.Name),
			Severity: SeverityWarning,
		})
	}
	return errs
}
