package engine

import (
	"fmt"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/plan"
)

// Result is one visible item's outcome. Exactly one of Solid and Err is
// set. OwnerID is stamped by display and is the key the response builder
// uses to find the item's previous cache entry.
type Result struct {
	ID      graph.ItemID
	OwnerID graph.ItemID
	Solid   kernel.Solid
	Hash    string
	Err     error
}

// OK reports whether the item built successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// collector is the only place a run records results.
type collector struct {
	p       *plan.Plan
	k       kernel.Kernel
	results []Result
	logs    []string
}

func newCollector(p *plan.Plan, k kernel.Kernel) *collector {
	return &collector{p: p, k: k}
}

// display records a built solid. A malformed call means the program
// itself is broken, so it fails the whole run with ErrInternal.
func (c *collector) display(s kernel.Solid, id graph.ItemID) error {
	if id <= 0 || !c.p.Has(id) {
		return fmt.Errorf("%w: display called with unknown item id %s", ErrInternal, id)
	}
	if s == nil {
		return fmt.Errorf("%w: display called without a solid for item %s", ErrInternal, id)
	}
	hash, err := c.k.Hash(s)
	if err != nil {
		return fmt.Errorf("%w: item %s: %v", ErrInternal, id, err)
	}
	c.results = append(c.results, Result{
		ID:      id,
		OwnerID: id,
		Solid:   s,
		Hash:    hash,
	})
	return nil
}

// reportError records an item failure.
func (c *collector) reportError(err error, id graph.ItemID) {
	c.results = append(c.results, Result{ID: id, Err: err})
}

func (c *collector) logf(format string, args ...any) {
	c.logs = append(c.logs, fmt.Sprintf(format, args...))
}
