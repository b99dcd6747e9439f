package scene

import (
	"github.com/tomz197/hashgrid/internal/broadphase"
)

// AllGroups is a mask that accepts every group.
const AllGroups = ^uint32(0)

// Scene is a named population of bodies of one kind. It is the collision
// model of one broad-phase grid.
//
// Two scenes may collide when each one's mask accepts the other's group.
// A scene collides with itself only when SelfCollide is set.
type Scene struct {
	Name        string
	Kind        string
	SelfCollide bool
	Group       uint32
	Mask        uint32
	Bodies      []*Body
}

var _ broadphase.Model = (*Scene)(nil)

// New creates an empty scene in group 1 that accepts every group.
func New(name, kind string) *Scene {
	return &Scene{
		Name:  name,
		Kind:  kind,
		Group: 1,
		Mask:  AllGroups,
	}
}

// Add appends bodies to the scene. Proxy indices follow insertion order.
func (s *Scene) Add(bodies ...*Body) {
	s.Bodies = append(s.Bodies, bodies...)
}

// Size returns the number of bodies.
func (s *Scene) Size() int {
	return len(s.Bodies)
}

// EachProxy yields one proxy per body, indexed by its position in Bodies.
func (s *Scene) EachProxy(fn func(p broadphase.Proxy)) {
	for i, b := range s.Bodies {
		fn(broadphase.Proxy{Index: i, Box: b.Box()})
	}
}

// Element returns the *Body at index.
func (s *Scene) Element(index int) broadphase.Element {
	return s.Bodies[index]
}

// CanCollideWith reports whether s and other may produce pairs.
func (s *Scene) CanCollideWith(other broadphase.Model) bool {
	o, ok := other.(*Scene)
	if !ok {
		return false
	}
	if o == s && !s.SelfCollide {
		return false
	}
	return s.Mask&o.Group != 0 && o.Mask&s.Group != 0
}

// Update moves every body by dt seconds inside w.
func (s *Scene) Update(dt float64, w World) {
	for _, b := range s.Bodies {
		b.Step(dt, w)
	}
}

// Body returns the body at index, or nil when out of range.
func (s *Scene) Body(index int) *Body {
	if index < 0 || index >= len(s.Bodies) {
		return nil
	}
	return s.Bodies[index]
}
