// Package plan compiles a geometry graph into an evaluation plan: ordered
// parameter bindings followed by one step per item, in graph order.
//
// A plan is data plus closures. Its Source text is a deterministic Lisp
// rendering of the same program, used for change detection and debugging.
// Parameter bindings are executed from that text by the runner; item steps
// run as Go closures over the kernel.
package plan

import (
	"fmt"
	"strings"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
)

// Scope is what a step sees while it builds: expression evaluation over
// the bound parameters, the kernel, and the solids of steps that ran
// before it.
type Scope interface {
	Eval(e graph.Expr) (float64, error)
	Kernel() kernel.Kernel
	Solid(id graph.ItemID) (kernel.Solid, error)
}

// Binding assigns a parameter its effective value for one run.
type Binding struct {
	ID     string
	Value  float64
	Source string
}

// Step constructs one item.
type Step struct {
	ItemID  graph.ItemID
	Name    string
	Visible bool
	Source  string

	build func(Scope) (kernel.Solid, error)
}

// Build runs the step's constructor against sc.
func (s Step) Build(sc Scope) (kernel.Solid, error) {
	if s.build == nil {
		return nil, fmt.Errorf("item %s has no constructor", s.ItemID)
	}
	return s.build(sc)
}

// Plan is a compiled, ready-to-run program.
type Plan struct {
	Bindings []Binding
	Steps    []Step
}

// Has reports whether the plan contains a step for id.
func (p *Plan) Has(id graph.ItemID) bool {
	for _, s := range p.Steps {
		if s.ItemID == id {
			return true
		}
	}
	return false
}

// Source renders the whole plan. Identical inputs produce byte-identical
// output.
func (p *Plan) Source() string {
	lines := make([]string, 0, len(p.Bindings)+len(p.Steps))
	for _, b := range p.Bindings {
		lines = append(lines, b.Source)
	}
	for _, s := range p.Steps {
		lines = append(lines, s.Source)
	}
	return strings.Join(lines, "\n")
}

// Compile turns parameters and items into a plan. It performs no
// validation: a reference to an item that is not declared earlier compiles
// to a step that fails when run.
func Compile(params []graph.Parameter, items []*graph.Item) *Plan {
	p := &Plan{
		Bindings: make([]Binding, 0, len(params)),
		Steps:    make([]Step, 0, len(items)),
	}
	for _, param := range params {
		v := param.Effective()
		p.Bindings = append(p.Bindings, Binding{
			ID:     param.ID,
			Value:  v,
			Source: fmt.Sprintf("(def %s %s)", param.ID, graph.FormatNumber(v)),
		})
	}

	ctx := newNamingContext()
	for _, it := range items {
		p.Steps = append(p.Steps, ctx.compileItem(it))
	}
	return p
}
