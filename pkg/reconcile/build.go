package reconcile

import (
	"context"
	"fmt"

	"github.com/chazu/meshsync/pkg/ctxlog"
	"github.com/chazu/meshsync/pkg/engine"
	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
)

// Mesher converts a solid to triangles. kernel.Kernel satisfies it.
type Mesher interface {
	ToMesh(s kernel.Solid) (*kernel.Mesh, error)
}

// MeshName is the name given to an item's mesh.
func MeshName(id graph.ItemID) string {
	return "id_" + id.String()
}

// Build reconciles results against prior, the display cache the client
// last acknowledged. The returned display cache replaces prior entirely;
// prior itself is not modified. Each result is handled on its own, so a
// meshing failure never affects other items.
func Build(ctx context.Context, prior DisplayCache, results []engine.Result, logs []string, m Mesher) *Response {
	logger := ctxlog.FromContext(ctx)
	resp := &Response{
		DisplayCache: make(DisplayCache, len(results)),
		Meshes:       make(Meshes, len(results)),
		Logs:         logs,
	}
	if resp.Logs == nil {
		resp.Logs = []string{}
	}

	for _, r := range results {
		if r.Err != nil {
			resp.DisplayCache[r.ID] = Entry{Err: r.Err.Error()}
			resp.Meshes[r.ID] = MeshDelta{}
			continue
		}

		// Keyed by owner: the id the display intrinsic stamped on the solid.
		if before, ok := prior[r.OwnerID]; ok && !before.Failed() && before.Hash == r.Hash {
			resp.DisplayCache[r.ID] = Entry{Hash: r.Hash}
			resp.Meshes[r.ID] = ReuseMesh()
			logger.Debug("Reusing mesh", "item", r.ID, "hash", r.Hash)
			continue
		}

		mesh, err := meshSolid(m, r.Solid, MeshName(r.OwnerID))
		if err != nil {
			logger.Warn("Meshing failed", "item", r.ID, "hash", r.Hash, "error", err)
			resp.DisplayCache[r.ID] = Entry{Hash: r.Hash, Err: err.Error()}
			resp.Meshes[r.ID] = MeshDelta{}
			continue
		}
		resp.DisplayCache[r.ID] = Entry{Hash: r.Hash}
		resp.Meshes[r.ID] = NewMesh(mesh)
		logger.Debug("Meshed item", "item", r.ID, "hash", r.Hash, "triangles", mesh.TriangleCount())
	}
	return resp
}

// meshSolid meshes s, turning a panic into an error.
func meshSolid(m Mesher, s kernel.Solid, name string) (mesh *kernel.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("meshing panicked: %v", r)
		}
	}()
	mesh, err = m.ToMesh(s)
	if err != nil {
		return nil, err
	}
	if mesh == nil {
		return nil, fmt.Errorf("mesher returned no mesh")
	}
	mesh.Name = name
	return mesh, nil
}
