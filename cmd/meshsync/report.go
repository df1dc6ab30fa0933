package main

import (
	"maps"
	"slices"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/reconcile"
)

// Item statuses in a cycle report.
const (
	statusMesh  = "mesh"
	statusReuse = "reuse"
	statusError = "error"
)

// MeshData is the JSON mesh format handed to a renderer.
type MeshData struct {
	ID       graph.ItemID `json:"id"`
	Vertices []float32    `json:"vertices"`
	Normals  []float32    `json:"normals"`
	Indices  []uint32     `json:"indices"`
	PartName string       `json:"partName"`
	Color    string       `json:"color"`
}

// ItemReport describes what one cycle did for one displayed item.
type ItemReport struct {
	ID        graph.ItemID `json:"id"`
	Name      string       `json:"name"`
	Hash      string       `json:"hash,omitempty"`
	Status    string       `json:"status"`
	Triangles int          `json:"triangles"`
	Color     string       `json:"color"`
	Error     string       `json:"error,omitempty"`
}

// CycleReport is the outcome of one cycle.
type CycleReport struct {
	Cycle int             `json:"cycle"`
	Items []ItemReport    `json:"items"`
	Logs  []string        `json:"logs"`
	Stats reconcile.Stats `json:"stats"`
}

// Report is what the command prints.
type Report struct {
	Scene  string        `json:"scene"`
	Cycles []CycleReport `json:"cycles"`
	Meshes []MeshData    `json:"meshes,omitempty"`
}

// report summarizes resp after it has been merged into the client cache.
func (a *App) report(resp *reconcile.Response) *CycleReport {
	rep := &CycleReport{
		Cycle: a.cycles,
		Items: []ItemReport{},
		Logs:  resp.Logs,
		Stats: resp.Stats(),
	}
	for _, id := range slices.Sorted(maps.Keys(resp.DisplayCache)) {
		entry := resp.DisplayCache[id]
		item := ItemReport{
			ID:    id,
			Name:  a.partName(id, nil),
			Hash:  entry.Hash,
			Color: colorFor(id),
			Error: entry.Err,
		}
		switch delta := resp.Meshes[id]; {
		case entry.Failed():
			item.Status = statusError
		case delta.Reuse:
			item.Status = statusReuse
		default:
			item.Status = statusMesh
		}
		if m := a.client.Mesh(id); m != nil && item.Status != statusError {
			item.Triangles = m.TriangleCount()
		}
		rep.Items = append(rep.Items, item)
	}
	return rep
}
