package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/hashgrid/internal/geom"
)

// Body is an axis-aligned box moving at constant velocity.
type Body struct {
	ID   int
	Pos  mgl64.Vec3 // center
	Vel  mgl64.Vec3 // units per second
	Half mgl64.Vec3 // half extents
}

// Box returns the bounds of b at its current position.
func (b *Body) Box() geom.Box {
	return geom.NewBoxForExtents(b.Pos, b.Half)
}

// Step advances b by dt seconds and wraps it into w.
func (b *Body) Step(dt float64, w World) {
	b.Pos = w.Wrap(b.Pos.Add(b.Vel.Mul(dt)))
}

func (b *Body) String() string {
	return fmt.Sprintf("body#%d@(%.1f,%.1f,%.1f)", b.ID, b.Pos[0], b.Pos[1], b.Pos[2])
}
