// Package reconcile turns one run's raw results into a display-cache
// response, meshing only items whose geometry the client does not
// already hold.
package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
)

// Entry is the server's record of what an item currently is. Hash is
// the geometry identity token; Err is set when the item failed to build
// or to mesh. A meshing failure keeps both.
type Entry struct {
	Hash string `json:"hash,omitempty"`
	Err  string `json:"err,omitempty"`
}

// Failed reports whether the entry records an error.
func (e Entry) Failed() bool {
	return e.Err != ""
}

// DisplayCache maps item ids to entries. It holds no meshes.
type DisplayCache map[graph.ItemID]Entry

// Clone returns an independent copy.
func (dc DisplayCache) Clone() DisplayCache {
	out := make(DisplayCache, len(dc))
	for id, e := range dc {
		out[id] = e
	}
	return out
}

// reuseToken is the wire form of a reuse delta.
const reuseToken = "reuse"

// MeshDelta tells the client what to do with one item's mesh: replace it
// (Mesh set), keep it (Reuse), or clear it (zero value, null on the wire).
type MeshDelta struct {
	Mesh  *kernel.Mesh
	Reuse bool
}

// ReuseMesh returns the delta meaning "keep the mesh you have".
func ReuseMesh() MeshDelta {
	return MeshDelta{Reuse: true}
}

// NewMesh returns a delta carrying a freshly computed mesh.
func NewMesh(m *kernel.Mesh) MeshDelta {
	return MeshDelta{Mesh: m}
}

// IsNull reports whether the delta clears the client's mesh.
func (d MeshDelta) IsNull() bool {
	return !d.Reuse && d.Mesh == nil
}

func (d MeshDelta) String() string {
	switch {
	case d.Reuse:
		return reuseToken
	case d.Mesh != nil:
		return fmt.Sprintf("mesh(%d triangles)", d.Mesh.TriangleCount())
	default:
		return "null"
	}
}

// MarshalJSON encodes the delta as a mesh object, "reuse" or null.
func (d MeshDelta) MarshalJSON() ([]byte, error) {
	switch {
	case d.Reuse:
		return json.Marshal(reuseToken)
	case d.Mesh != nil:
		return json.Marshal(d.Mesh)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the three forms written by MarshalJSON.
func (d *MeshDelta) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = MeshDelta{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != reuseToken {
			return fmt.Errorf("reconcile: unknown mesh token %q", s)
		}
		d.Reuse = true
		return nil
	default:
		var m kernel.Mesh
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("reconcile: decoding mesh: %w", err)
		}
		d.Mesh = &m
		return nil
	}
}

// Meshes maps item ids to mesh deltas.
type Meshes map[graph.ItemID]MeshDelta

// Response is what one recompute cycle sends to the client.
type Response struct {
	DisplayCache DisplayCache `json:"displayCache"`
	Meshes       Meshes       `json:"meshes"`
	Logs         []string     `json:"logs"`
}

// Stats counts the delta kinds in a response.
type Stats struct {
	Meshed int `json:"meshed"`
	Reused int `json:"reused"`
	Failed int `json:"failed"`
}

// Stats summarizes the response.
func (r *Response) Stats() Stats {
	var s Stats
	for id, d := range r.Meshes {
		switch {
		case d.Reuse:
			s.Reused++
		case d.Mesh != nil:
			s.Meshed++
		}
		if r.DisplayCache[id].Failed() {
			s.Failed++
		}
	}
	return s
}
