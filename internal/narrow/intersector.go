package narrow

import (
	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/geom"
	"github.com/tomz197/hashgrid/internal/scene"
)

// BoxIntersector reports bodies whose boxes overlap or touch. The alarm
// margin of the broad phase is not applied here.
type BoxIntersector struct{}

var _ broadphase.Intersector = BoxIntersector{}

// BeginIntersect marks out as opened for this step.
func (BoxIntersector) BeginIntersect(_, _ broadphase.Model, out broadphase.Output) {
	if c, ok := out.(*Contacts); ok {
		c.begin()
	}
}

// Intersect adds a contact to out when the two bodies overlap.
func (BoxIntersector) Intersect(e1, e2 broadphase.Element, out broadphase.Output) {
	a, okA := e1.(*scene.Body)
	b, okB := e2.(*scene.Body)
	c, okC := out.(*Contacts)
	if !okA || !okB || !okC {
		return
	}

	ba, bb := a.Box(), b.Box()
	if !ba.Intersects(bb) {
		return
	}
	c.Add(Contact{A: a, B: b, Depth: geom.Penetration(ba, bb)})
}
