// Package engine runs compiled plans. Each run gets a fresh zygomys
// sandbox holding the parameter bindings; item steps build solids through
// the kernel and report through the display and reportError intrinsics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/meshsync/pkg/ctxlog"
	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/plan"
)

var (
	// ErrInternal marks a run that violated the intrinsic contract or
	// panicked outside of an item step.
	ErrInternal = errors.New("internal error")
	// ErrTimeout marks a run that exceeded Options.Timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded marks a run whose result was discarded because a newer
	// run started on the same Engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// DefaultTimeout is the hard limit for a single run.
const DefaultTimeout = 5 * time.Second

// EvalError is a Lisp parse or runtime error, with the line when zygomys
// reports one.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Options configures an Engine.
type Options struct {
	// Timeout bounds a single run. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Output is the product of a successful run.
type Output struct {
	// Results holds one entry per visible item, in plan order.
	Results []Result
	// Logs holds one line per failed item, visible or not.
	Logs []string
}

// Engine runs plans. It is safe for concurrent use; each run creates a
// fresh sandbox, and a newer run supersedes any older one still in
// flight.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Engine{timeout: opts.Timeout}
}

// Timeout reports the configured run limit.
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// Run executes p against k.
//
// Return semantics:
//   - On success: returns the output; item failures are inside it
//   - On a malformed program (bad parameter binding, intrinsic misuse,
//     panic outside a step): returns nil and an error wrapping ErrInternal
//     or an EvalError
//   - On timeout, cancellation or supersession: returns nil and the
//     corresponding error
//
// A run that is abandoned by timeout or cancellation stops at the next
// step boundary. The kernel call in progress at that moment cannot be
// interrupted and may still be running after Run returns, so kernels
// whose solids are not safe for concurrent use can briefly see two runs.
func (e *Engine) Run(ctx context.Context, p *plan.Plan, k kernel.Kernel) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan runResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- runResult{err: fmt.Errorf("%w: panic during evaluation: %v", ErrInternal, r)}
			}
		}()

		out, err := run(ctx, p, k)
		ch <- runResult{out: out, err: err}
	}()

	return e.waitWithTimeout(ctx, ch, gen)
}

// run performs one synchronous pass over the plan.
func run(ctx context.Context, p *plan.Plan, k kernel.Kernel) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	sc := newScope(k)
	defer sc.close()

	for _, b := range p.Bindings {
		if err := sc.bind(b); err != nil {
			return nil, fmt.Errorf("binding parameter %q: %w", b.ID, err)
		}
	}

	col := newCollector(p, k)
	for _, st := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		solid, err := buildStep(sc, st)
		if sc.broken != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, sc.broken)
		}
		if err != nil {
			sc.fail(st.ItemID, err)
			col.logf("item %s: %v", itemLabel(st.ItemID, st.Name), err)
			if st.Visible {
				col.reportError(err, st.ItemID)
			} else {
				logger.Debug("Hidden item failed", "item", st.ItemID, "error", err)
			}
			continue
		}

		sc.store(st.ItemID, solid)
		if st.Visible {
			if err := col.display(solid, st.ItemID); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Plan evaluated", "steps", len(p.Steps), "results", len(col.results), "failures", len(col.logs))
	return &Output{Results: col.results, Logs: col.logs}, nil
}

// buildStep runs one step, turning a panic into an item error.
func buildStep(sc *scope, st plan.Step) (solid kernel.Solid, err error) {
	defer func() {
		if r := recover(); r != nil {
			solid, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	solid, err = st.Build(sc)
	if err == nil && solid == nil {
		err = fmt.Errorf("item %s produced no solid", st.ItemID)
	}
	return solid, err
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError, extracting
// the line number when the message carries one.
func parseZygomysError(err error) EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return EvalError{Message: strings.TrimSpace(msg)}
}

// itemLabel is used in log lines for items without a name.
func itemLabel(id graph.ItemID, name string) string {
	if name == "" {
		return id.String()
	}
	return fmt.Sprintf("%s (%s)", id, name)
}
