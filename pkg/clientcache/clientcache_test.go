package clientcache

import (
	"testing"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/chazu/meshsync/pkg/kernel"
	"github.com/chazu/meshsync/pkg/reconcile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mesh(name string) *kernel.Mesh {
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 0, 0}, Name: name}
}

func TestMergeIntoEmpty(t *testing.T) {
	m1 := mesh("id_1")
	got := Merge(nil,
		reconcile.DisplayCache{1: {Hash: "h1"}, 2: {Err: "bad radius"}},
		reconcile.Meshes{1: reconcile.NewMesh(m1), 2: {}},
	)

	want := Cache{
		1: {Hash: "h1", Mesh: m1},
		2: {Err: "bad radius"},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestMergeReuseKeepsMesh(t *testing.T) {
	m1 := mesh("id_1")
	prior := Cache{1: {Hash: "h1", Mesh: m1}}

	got := Merge(prior, reconcile.DisplayCache{1: {Hash: "h1"}}, reconcile.Meshes{1: reconcile.ReuseMesh()})

	require.Contains(t, got, graph.ItemID(1))
	assert.Same(t, m1, got[1].Mesh)
	assert.Equal(t, "h1", got[1].Hash)
}

func TestMergeReplacesMesh(t *testing.T) {
	prior := Cache{1: {Hash: "old", Mesh: mesh("id_1")}}
	fresh := mesh("id_1")

	got := Merge(prior, reconcile.DisplayCache{1: {Hash: "new"}}, reconcile.Meshes{1: reconcile.NewMesh(fresh)})

	assert.Same(t, fresh, got[1].Mesh)
	assert.Equal(t, "new", got[1].Hash)
}

func TestMergeNullClearsMesh(t *testing.T) {
	prior := Cache{1: {Hash: "old", Mesh: mesh("id_1")}}

	got := Merge(prior,
		reconcile.DisplayCache{1: {Hash: "new", Err: "meshing failed"}},
		reconcile.Meshes{1: {}},
	)

	assert.Nil(t, got[1].Mesh)
	assert.Equal(t, "new", got[1].Hash)
	assert.Equal(t, "meshing failed", got[1].Err)
}

func TestMergeClearsErrorOnRecovery(t *testing.T) {
	prior := Cache{1: {Err: "bad radius"}}
	m := mesh("id_1")

	got := Merge(prior, reconcile.DisplayCache{1: {Hash: "h"}}, reconcile.Meshes{1: reconcile.NewMesh(m)})

	assert.Equal(t, Entry{Hash: "h", Mesh: m}, got[1])
}

func TestMergeLeavesAbsentIDs(t *testing.T) {
	m9 := mesh("id_9")
	prior := Cache{9: {Hash: "h9", Mesh: m9}}

	got := Merge(prior, reconcile.DisplayCache{1: {Hash: "h1"}}, reconcile.Meshes{1: reconcile.NewMesh(mesh("id_1"))})

	assert.Len(t, got, 2)
	assert.Same(t, m9, got[9].Mesh)
}

func TestMergeDoesNotMutatePrior(t *testing.T) {
	m := mesh("id_1")
	prior := Cache{1: {Hash: "old", Mesh: m}}

	_ = Merge(prior, reconcile.DisplayCache{1: {Hash: "new"}}, reconcile.Meshes{1: {}})

	assert.Equal(t, Entry{Hash: "old", Mesh: m}, prior[1])
}

func TestMergeIdempotent(t *testing.T) {
	prior := Cache{
		1: {Hash: "h1", Mesh: mesh("id_1")},
		2: {Hash: "h2", Mesh: mesh("id_2")},
	}
	dc := reconcile.DisplayCache{1: {Hash: "h1"}, 2: {Hash: "h2b"}, 3: {Err: "x"}}
	meshes := reconcile.Meshes{1: reconcile.ReuseMesh(), 2: reconcile.NewMesh(mesh("id_2")), 3: {}}

	once := Merge(prior, dc, meshes)
	twice := Merge(once, dc, meshes)

	assert.Empty(t, cmp.Diff(once, twice))
}

func TestDisplayCacheOmitsMeshlessEntries(t *testing.T) {
	c := Cache{
		1: {Hash: "h1", Mesh: mesh("id_1")},
		2: {Err: "bad radius"},
		3: {Hash: "h3", Err: "meshing failed"},
		4: {Hash: "h4"},
	}

	assert.Equal(t, reconcile.DisplayCache{1: {Hash: "h1"}}, c.DisplayCache())
}

func TestRemove(t *testing.T) {
	c := Cache{1: {Hash: "a"}, 2: {Hash: "b"}, 3: {Hash: "c"}}

	got := c.Remove(2, 7)

	assert.Equal(t, []graph.ItemID{1, 3}, got.IDs())
	assert.Len(t, c, 3, "Remove must not modify the receiver")
}

func TestMeshAccessor(t *testing.T) {
	m := mesh("id_1")
	c := Cache{1: {Mesh: m}}
	assert.Same(t, m, c.Mesh(1))
	assert.Nil(t, c.Mesh(2))
}

func TestMergeMissingDelta(t *testing.T) {
	held := mesh("id_1")
	prior := Cache{1: {Hash: "h1", Mesh: held}}

	tests := []struct {
		name     string
		entry    reconcile.Entry
		wantMesh *kernel.Mesh
	}{
		{"same hash keeps mesh", reconcile.Entry{Hash: "h1"}, held},
		{"new hash drops mesh", reconcile.Entry{Hash: "h2"}, nil},
		{"error drops mesh", reconcile.Entry{Hash: "h1", Err: "meshing failed"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(prior, reconcile.DisplayCache{1: tt.entry}, reconcile.Meshes{})
			if tt.wantMesh == nil {
				assert.Nil(t, got[1].Mesh)
			} else {
				assert.Same(t, tt.wantMesh, got[1].Mesh)
			}
			assert.Equal(t, tt.entry.Hash, got[1].Hash)
			assert.Same(t, held, prior[1].Mesh, "prior must not change")
		})
	}
}
