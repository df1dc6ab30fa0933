// Package kerneltest provides a kernel.Kernel test double that records
// meshing calls and can inject meshing failures by solid hash.
package kerneltest

import (
	"fmt"
	"sync"

	"github.com/chazu/meshsync/pkg/kernel"
)

// Kernel wraps a real kernel. Construction and hashing pass through;
// ToMesh is counted and may be made to fail or panic per hash.
type Kernel struct {
	kernel.Kernel

	mu     sync.Mutex
	meshed []string
	fail   map[string]error
	panics map[string]bool
}

// Wrap returns a counting wrapper around k.
func Wrap(k kernel.Kernel) *Kernel {
	return &Kernel{
		Kernel: k,
		fail:   make(map[string]error),
		panics: make(map[string]bool),
	}
}

// FailMeshing makes ToMesh return err for solids with the given hash.
func (k *Kernel) FailMeshing(hash string, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.fail[hash] = err
}

// PanicMeshing makes ToMesh panic for solids with the given hash.
func (k *Kernel) PanicMeshing(hash string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.panics[hash] = true
}

// Heal clears all injected failures.
func (k *Kernel) Heal() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.fail = make(map[string]error)
	k.panics = make(map[string]bool)
}

// ToMesh records the call and delegates unless a failure was injected.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	h, err := k.Kernel.Hash(s)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.meshed = append(k.meshed, h)
	failErr := k.fail[h]
	doPanic := k.panics[h]
	k.mu.Unlock()

	if doPanic {
		panic(fmt.Sprintf("kerneltest: injected meshing panic for %s", h))
	}
	if failErr != nil {
		return nil, failErr
	}
	return k.Kernel.ToMesh(s)
}

// MeshCalls returns the number of ToMesh calls since the last Reset.
func (k *Kernel) MeshCalls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.meshed)
}

// Meshed returns the hashes passed to ToMesh since the last Reset, in order.
func (k *Kernel) Meshed() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.meshed...)
}

// Reset clears the call log. Injected failures stay in place.
func (k *Kernel) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.meshed = nil
}
