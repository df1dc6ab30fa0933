package engine

import (
	"fmt"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/plan"
	zygo "github.com/glycerine/zygomys/zygo"
)

// scope is the per-run evaluation scope handed to plan steps.
type scope struct {
	env      *zygo.Zlisp
	bindings []plan.Binding
	k        kernel.Kernel
	solids   map[graph.ItemID]kernel.Solid
	failed   map[graph.ItemID]error

	// broken is set when the sandbox could not be restored.
	broken error
}

var _ plan.Scope = (*scope)(nil)

// newScope creates a scope around a fresh sandbox. Sandbox mode keeps
// expressions away from the filesystem and syscalls.
func newScope(k kernel.Kernel) *scope {
	return &scope{
		env:    zygo.NewZlispSandbox(),
		k:      k,
		solids: make(map[graph.ItemID]kernel.Solid),
		failed: make(map[graph.ItemID]error),
	}
}

func (sc *scope) close() {
	sc.env.Stop()
}

// bind executes a parameter binding in the sandbox.
func (sc *scope) bind(b plan.Binding) error {
	if _, err := sc.evalString(b.Source); err != nil {
		return err
	}
	sc.bindings = append(sc.bindings, b)
	return nil
}

// reset replaces the sandbox after a failed expression so that one bad
// item cannot leave interpreter state behind for the next.
func (sc *scope) reset() error {
	sc.env.Stop()
	sc.env = zygo.NewZlispSandbox()
	for _, b := range sc.bindings {
		if _, err := sc.evalString(b.Source); err != nil {
			return fmt.Errorf("rebinding parameter %q: %w", b.ID, err)
		}
	}
	return nil
}

// Eval returns the value of e. Literals skip the interpreter.
func (sc *scope) Eval(e graph.Expr) (float64, error) {
	if v, ok := e.Literal(); ok {
		return v, nil
	}
	if name := e.String(); isSymbol(name) {
		return sc.lookup(name)
	}
	v, err := sc.evalString(e.String())
	if err != nil {
		if rerr := sc.reset(); rerr != nil {
			sc.broken = rerr
		}
		return 0, fmt.Errorf("evaluating %q: %w", e.String(), err)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", e.String(), err)
	}
	return f, nil
}

// lookup resolves a bare parameter reference. zygomys does not return
// the value of a lone symbol from Run, so these never reach the sandbox.
func (sc *scope) lookup(name string) (float64, error) {
	want := preprocessSource(name)
	for i := len(sc.bindings) - 1; i >= 0; i-- {
		if preprocessSource(sc.bindings[i].ID) == want {
			return sc.bindings[i].Value, nil
		}
	}
	return 0, fmt.Errorf("evaluating %q: unknown parameter", name)
}

// isSymbol reports whether s is a single identifier such as radius or
// wall-thickness.
func isSymbol(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if c := s[i]; !isIdentChar(c) && c != '-' {
			return false
		}
	}
	return true
}

// evalString loads and runs src in the sandbox, returning the value of
// its last expression.
func (sc *scope) evalString(src string) (zygo.Sexp, error) {
	if err := sc.env.LoadString(preprocessSource(src)); err != nil {
		return nil, parseZygomysError(err)
	}
	v, err := sc.env.Run()
	if err != nil {
		return nil, parseZygomysError(err)
	}
	return v, nil
}

func (sc *scope) Kernel() kernel.Kernel {
	return sc.k
}

// Solid returns the solid built earlier in this run for id.
func (sc *scope) Solid(id graph.ItemID) (kernel.Solid, error) {
	if s, ok := sc.solids[id]; ok {
		return s, nil
	}
	if err, ok := sc.failed[id]; ok {
		return nil, fmt.Errorf("depends on failed item %s: %v", id, err)
	}
	return nil, fmt.Errorf("item %s has not been built", id)
}

func (sc *scope) store(id graph.ItemID, s kernel.Solid) {
	sc.solids[id] = s
}

func (sc *scope) fail(id graph.ItemID, err error) {
	sc.failed[id] = err
}

// toFloat64 converts a zygomys number to float64.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", s)
	}
}

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites expression source before passing it to
// zygomys:
//
//  1. Kebab-case to underscore: wall-thickness -> wall_thickness.
//     zygomys reads hyphens as the subtraction operator, so kebab-case
//     parameter ids are converted outside of strings and comments.
//
//  2. ; line comments become // comments, which is what zygomys expects.
//
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source))
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Only when the hyphen sits between identifier characters; a
		// leading or spaced hyphen is the minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
