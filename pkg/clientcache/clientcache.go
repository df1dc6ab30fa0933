// Package clientcache is the client's view of the display state: for each
// item, the last identity token it was told about and the mesh it holds.
package clientcache

import (
	"maps"
	"slices"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/reconcile"
)

// Entry is what the client holds for one item.
type Entry struct {
	Hash string
	Mesh *kernel.Mesh
	Err  string
}

// Cache maps item ids to entries. Values are treated as immutable: Merge
// and Remove return new caches and never modify their input.
type Cache map[graph.ItemID]Entry

// Merge applies one response to prior and returns the updated cache.
// Items absent from the response keep their entry unchanged; nothing is
// deleted. An item in dc without a mesh delta keeps its mesh unless the
// entry failed or its hash changed. Merging the same response twice gives the same cache.
func Merge(prior Cache, dc reconcile.DisplayCache, meshes reconcile.Meshes) Cache {
	next := maps.Clone(prior)
	if next == nil {
		next = make(Cache, len(dc))
	}

	for id, entry := range dc {
		cur := next[id]
		sameHash := cur.Hash == entry.Hash
		cur.Hash = entry.Hash
		cur.Err = entry.Err

		d, ok := meshes[id]
		switch {
		case !ok:
			// No delta: the held mesh stays only while it still matches.
			if entry.Err != "" || !sameHash {
				cur.Mesh = nil
			}
		case d.Reuse:
			// Keep the mesh already held.
		case d.Mesh != nil:
			cur.Mesh = d.Mesh
		default:
			cur.Mesh = nil
		}
		next[id] = cur
	}
	return next
}

// DisplayCache derives the prior cache the client sends with its next
// request. Entries without a mesh are left out so that the server cannot
// answer "reuse" for a mesh the client does not have.
func (c Cache) DisplayCache() reconcile.DisplayCache {
	dc := make(reconcile.DisplayCache, len(c))
	for id, e := range c {
		if e.Mesh == nil || e.Err != "" {
			continue
		}
		dc[id] = reconcile.Entry{Hash: e.Hash}
	}
	return dc
}

// Remove returns a copy of c without the given ids.
func (c Cache) Remove(ids ...graph.ItemID) Cache {
	next := maps.Clone(c)
	for _, id := range ids {
		delete(next, id)
	}
	return next
}

// IDs returns the cached ids in ascending order.
func (c Cache) IDs() []graph.ItemID {
	return slices.Sorted(maps.Keys(c))
}

// Mesh returns the mesh held for id, or nil.
func (c Cache) Mesh(id graph.ItemID) *kernel.Mesh {
	return c[id].Mesh
}
