// Package session runs recompute cycles for one editor: compile the graph,
// evaluate the plan, and reconcile the results against the display cache
// from the previous cycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chazu/meshsync/pkg/ctxlog"
	"github.com/chazu/meshsync/pkg/engine"
	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/plan"
	"github.com/chazu/meshsync/pkg/reconcile"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrBusy is returned when a cycle is requested while another one is
	// still running on the same session.
	ErrBusy = errors.New("session: recompute already in progress")
	// ErrNilCallback is returned synchronously by CalculateDisplayInfo.
	ErrNilCallback = errors.New("session: callback is required")
	// ErrNoGraph is returned when the editor state carries no graph.
	ErrNoGraph = errors.New("session: editor state has no graph")
)

// EditorState is what one editor carries between cycles: its graph and
// the display cache returned by the previous cycle.
type EditorState struct {
	Graph        *graph.Graph
	DisplayCache reconcile.DisplayCache
}

// Apply records resp as the state's display cache for the next cycle.
func (s *EditorState) Apply(resp *reconcile.Response) {
	s.DisplayCache = resp.DisplayCache
}

// Callback receives the outcome of CalculateDisplayInfo. Exactly one of
// resp and err is non-nil.
type Callback func(resp *reconcile.Response, err error)

// Config configures a Session.
type Config struct {
	// Kernel builds, hashes and meshes solids. Required.
	Kernel kernel.Kernel
	// Timeout bounds the evaluation of one cycle. Zero means
	// engine.DefaultTimeout.
	Timeout time.Duration
	// Logger is used when the context carries none.
	Logger *slog.Logger
}

// Session serializes recompute cycles for one editor. It is safe for
// concurrent use; overlapping cycles are rejected with ErrBusy.
type Session struct {
	kernel kernel.Kernel
	engine *engine.Engine
	logger *slog.Logger
	sem    *semaphore.Weighted

	mu         sync.Mutex
	lastSource string
	cycles     uint64
}

// New creates a Session.
func New(cfg Config) (*Session, error) {
	if cfg.Kernel == nil {
		return nil, fmt.Errorf("session: kernel is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		kernel: cfg.Kernel,
		engine: engine.New(engine.Options{Timeout: cfg.Timeout}),
		logger: logger,
		sem:    semaphore.NewWeighted(1),
	}, nil
}

// Kernel returns the session's kernel.
func (s *Session) Kernel() kernel.Kernel {
	return s.kernel
}

// Recompute runs one cycle synchronously. It never modifies state; the
// caller stores resp.DisplayCache (see EditorState.Apply) when it wants
// the next cycle to reuse meshes.
func (s *Session) Recompute(ctx context.Context, state EditorState) (*reconcile.Response, error) {
	if !s.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer s.sem.Release(1)
	return s.recompute(ctx, state)
}

// CalculateDisplayInfo runs one cycle in the background and reports the
// outcome through cb exactly once. It fails synchronously only when cb is
// nil. The graph and display cache are snapshotted before it returns, so
// the caller may keep editing while the cycle runs.
func (s *Session) CalculateDisplayInfo(ctx context.Context, state EditorState, cb Callback) error {
	if cb == nil {
		return ErrNilCallback
	}
	if state.Graph != nil {
		state.Graph = state.Graph.Clone()
	}
	state.DisplayCache = state.DisplayCache.Clone()

	if !s.sem.TryAcquire(1) {
		go cb(nil, ErrBusy)
		return nil
	}
	go func() {
		defer s.sem.Release(1)
		resp, err := s.recompute(ctx, state)
		if err != nil {
			cb(nil, err)
			return
		}
		cb(resp, nil)
	}()
	return nil
}

// recompute is one compile, run and build pass. The semaphore is held.
func (s *Session) recompute(ctx context.Context, state EditorState) (*reconcile.Response, error) {
	if state.Graph == nil {
		return nil, ErrNoGraph
	}

	s.mu.Lock()
	s.cycles++
	cycle := s.cycles
	s.mu.Unlock()

	if _, ok := ctxlog.Lookup(ctx); !ok {
		ctx = ctxlog.WithLogger(ctx, s.logger)
	}
	ctx = ctxlog.With(ctx, "cycle", cycle)
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	p := plan.Compile(state.Graph.Parameters, state.Graph.Items)
	s.logSourceChange(ctx, p.Source())

	out, err := s.engine.Run(ctx, p, s.kernel)
	if err != nil {
		logger.Error("Evaluation failed", "error", err)
		return nil, fmt.Errorf("evaluating graph: %w", err)
	}

	logs := out.Logs
	for _, finding := range graph.ValidateAll(state.Graph).All() {
		logs = append(logs, finding.Error())
	}

	resp := reconcile.Build(ctx, state.DisplayCache, out.Results, logs, s.kernel)
	stats := resp.Stats()
	logger.Info("Recompute finished",
		"items", len(state.Graph.Items),
		"results", len(out.Results),
		"meshed", stats.Meshed,
		"reused", stats.Reused,
		"failed", stats.Failed,
		"duration", time.Since(start),
	)
	return resp, nil
}
