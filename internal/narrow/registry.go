package narrow

import (
	"sync"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/scene"
)

type kindPair struct {
	a, b string
}

// Registry selects intersectors by the kinds of the two scenes. An
// intersector registered for (a, b) also serves (b, a), reported as
// swapped. Kind pairs without an entry are never tested.
type Registry struct {
	mu      sync.RWMutex
	entries map[kindPair]broadphase.Intersector
}

var _ broadphase.IntersectionMethod = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[kindPair]broadphase.Intersector)}
}

// Register sets the intersector for scenes of kinds (a, b).
func (r *Registry) Register(a, b string, ei broadphase.Intersector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[kindPair{a, b}] = ei
}

// FindIntersector looks up (kind(m1), kind(m2)) then the reverse.
func (r *Registry) FindIntersector(m1, m2 broadphase.Model) (broadphase.Intersector, bool) {
	s1, ok1 := m1.(*scene.Scene)
	s2, ok2 := m2.(*scene.Scene)
	if !ok1 || !ok2 {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if ei, ok := r.entries[kindPair{s1.Kind, s2.Kind}]; ok {
		return ei, false
	}
	if ei, ok := r.entries[kindPair{s2.Kind, s1.Kind}]; ok {
		return ei, true
	}
	return nil, false
}

// Len returns the number of registered kind pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
