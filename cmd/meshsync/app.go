package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/chazu/meshsync/pkg/clientcache"
	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/kernel/manifold"
	"github.com/chazu/meshsync/pkg/kernel/sdfx"
	"github.com/chazu/meshsync/pkg/reconcile"
	"github.com/chazu/meshsync/pkg/scene"
	"github.com/chazu/meshsync/pkg/session"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// colorFor keeps an item's color stable across cycles.
func colorFor(id graph.ItemID) string {
	if id <= 0 {
		return colorPalette[0]
	}
	return colorPalette[int(id-1)%len(colorPalette)]
}

// App plays the client side of the protocol: it holds the editor state
// and the client cache, and sends the cache back with every cycle.
type App struct {
	cfg     *Config
	logger  *slog.Logger
	session *session.Session

	state  session.EditorState
	client clientcache.Cache
	cycles int
}

// NewApp creates an App with the configured kernel.
func NewApp(cfg *Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	k, err := newKernel(cfg)
	if err != nil {
		return nil, err
	}
	s, err := session.New(session.Config{
		Kernel:  k,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, logger: logger, session: s}, nil
}

func newKernel(cfg *Config) (kernel.Kernel, error) {
	switch cfg.Kernel {
	case kernelManifold:
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("creating kernel: %w", err)
		}
		return k, nil
	default:
		return sdfx.New(sdfx.WithMeshCells(cfg.MeshCells)), nil
	}
}

// Load replaces the graph and forgets everything the client held.
func (a *App) Load(g *graph.Graph) {
	a.state = session.EditorState{Graph: g}
	a.client = nil
}

// Graph returns the loaded graph. Edits to it take effect on the next cycle.
func (a *App) Graph() *graph.Graph {
	return a.state.Graph
}

// Cycle runs one recompute against the client cache and merges the
// response into it.
func (a *App) Cycle(ctx context.Context) (*CycleReport, error) {
	a.state.DisplayCache = a.client.DisplayCache()

	type outcome struct {
		resp *reconcile.Response
		err  error
	}
	done := make(chan outcome, 1)
	err := a.session.CalculateDisplayInfo(ctx, a.state, func(resp *reconcile.Response, err error) {
		done <- outcome{resp: resp, err: err}
	})
	if err != nil {
		return nil, err
	}

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if o.err != nil {
		return nil, fmt.Errorf("cycle %d: %w", a.cycles+1, o.err)
	}

	a.state.Apply(o.resp)
	a.client = clientcache.Merge(a.client, o.resp.DisplayCache, o.resp.Meshes)
	a.cycles++
	return a.report(o.resp), nil
}

// Apply sets each override on the loaded graph.
func (a *App) Apply(overrides []Override) error {
	for _, o := range overrides {
		if err := a.state.Graph.SetParameter(o.Name, o.Value); err != nil {
			return fmt.Errorf("applying --set %s: %w", o.Name, err)
		}
		a.logger.Debug("Parameter overridden", "parameter", o.Name, "value", o.Value)
	}
	return nil
}

// Meshes returns the meshes the client holds, in id order, colored for
// display.
func (a *App) Meshes() []MeshData {
	meshes := []MeshData{}
	for _, id := range a.client.IDs() {
		m := a.client.Mesh(id)
		if m == nil {
			continue
		}
		meshes = append(meshes, MeshData{
			ID:       id,
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: a.partName(id, m),
			Color:    colorFor(id),
		})
	}
	return meshes
}

func (a *App) partName(id graph.ItemID, m *kernel.Mesh) string {
	if a.state.Graph != nil {
		if it := a.state.Graph.Get(id); it != nil && it.Name != "" {
			return it.Name
		}
	}
	if m != nil && m.Name != "" {
		return m.Name
	}
	return reconcile.MeshName(id)
}

// Run loads the configured scene, runs the baseline cycle and, when
// overrides are configured, a second one. The report is written to out.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	g, err := scene.LoadFile(a.cfg.ScenePath)
	if err != nil {
		return err
	}
	a.Load(g)
	a.logger.Info("Scene loaded",
		"path", a.cfg.ScenePath,
		"items", g.ItemCount(),
		"parameters", len(g.Parameters),
	)

	rep := Report{Scene: a.cfg.ScenePath}
	baseline, err := a.Cycle(ctx)
	if err != nil {
		return err
	}
	rep.Cycles = append(rep.Cycles, *baseline)

	if len(a.cfg.Overrides) > 0 {
		if err := a.Apply(a.cfg.Overrides); err != nil {
			return err
		}
		next, err := a.Cycle(ctx)
		if err != nil {
			return err
		}
		rep.Cycles = append(rep.Cycles, *next)
	}

	if a.cfg.Meshes {
		rep.Meshes = a.Meshes()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
