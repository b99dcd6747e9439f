package broadphase

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/hashgrid/internal/geom"
)

// boxModel is a Model over a fixed list of boxes.
type boxModel struct {
	name     string
	boxes    []geom.Box
	isolated bool // refuses every collision
}

type elemRef struct {
	model string
	index int
}

func newBoxModel(name string, boxes ...geom.Box) *boxModel {
	return &boxModel{name: name, boxes: boxes}
}

func (m *boxModel) Size() int { return len(m.boxes) }

func (m *boxModel) EachProxy(fn func(p Proxy)) {
	for i, b := range m.boxes {
		fn(Proxy{Index: i, Box: b})
	}
}

func (m *boxModel) Element(index int) Element {
	return elemRef{model: m.name, index: index}
}

func (m *boxModel) CanCollideWith(other Model) bool {
	if m.isolated {
		return false
	}
	if o, ok := other.(*boxModel); ok && o.isolated {
		return false
	}
	return true
}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.Box {
	return geom.NewBox(mgl64.Vec3{minX, minY, minZ}, mgl64.Vec3{maxX, maxY, maxZ})
}

// dispatch is one recorded Intersect call.
type dispatch struct {
	a, b elemRef
}

// recorder is an Intersector, IntersectionMethod and NarrowPhase at once.
type recorder struct {
	mu         sync.Mutex
	swap       bool
	none       bool
	begins     [][2]Model
	lookups    [][2]Model
	dispatches []dispatch
}

func (r *recorder) FindIntersector(m1, m2 Model) (Intersector, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, [2]Model{m1, m2})
	if r.none {
		return nil, false
	}
	return r, r.swap
}

func (r *recorder) DetectionOutputs(m1, m2 Model) Output {
	return r
}

func (r *recorder) BeginIntersect(m1, m2 Model, out Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begins = append(r.begins, [2]Model{m1, m2})
}

func (r *recorder) Intersect(e1, e2 Element, out Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, dispatch{a: e1.(elemRef), b: e2.(elemRef)})
}

// counts returns how often each dispatched pair was seen.
func (r *recorder) counts() map[dispatch]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := make(map[dispatch]int, len(r.dispatches))
	for _, d := range r.dispatches {
		m[d]++
	}
	return m
}

func unitSettings() Settings {
	return Settings{CellSize: 1, AlarmDistance: 0}
}
