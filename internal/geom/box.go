// Package geom provides the axis-aligned box type shared by the broad phase
// and the scenes that feed it.
package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box in 3D.
type Box struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Cell is an integer grid coordinate.
type Cell struct {
	I, J, K int64
}

// NewBox creates a box from its two corners.
func NewBox(min, max mgl64.Vec3) Box {
	return Box{Min: min, Max: max}
}

// NewBoxForExtents creates a box centered on c with the given half extents.
func NewBoxForExtents(c, half mgl64.Vec3) Box {
	return Box{Min: c.Sub(half), Max: c.Add(half)}
}

func (b Box) String() string {
	return fmt.Sprintf("[%g %g %g]-[%g %g %g]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

// Center returns the center of the box.
func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Inflate grows the box by d on every side.
func (b Box) Inflate(d float64) Box {
	off := mgl64.Vec3{d, d, d}
	return Box{Min: b.Min.Sub(off), Max: b.Max.Add(off)}
}

// Intersects returns true if a and b overlap or touch.
func (b Box) Intersects(o Box) bool {
	return Overlaps(b, o, 0)
}

// Overlaps reports whether a and b are closer than d on every axis.
// The boxes are apart as soon as, on a single axis, the minimum of one
// exceeds the maximum of the other by more than d.
func Overlaps(a, b Box, d float64) bool {
	for axis := 0; axis < 3; axis++ {
		if a.Min[axis] > b.Max[axis]+d || b.Min[axis] > a.Max[axis]+d {
			return false
		}
	}
	return true
}

// Penetration returns the per-axis overlap depth of a and b.
// Components are negative on axes where the boxes are apart.
func Penetration(a, b Box) mgl64.Vec3 {
	var depth mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		depth[axis] = math.Min(a.Max[axis], b.Max[axis]) - math.Max(a.Min[axis], b.Min[axis])
	}
	return depth
}

// CellOf converts a world position to the cell that contains it.
func CellOf(p mgl64.Vec3, cellSize float64) Cell {
	return Cell{
		I: int64(math.Floor(p[0] / cellSize)),
		J: int64(math.Floor(p[1] / cellSize)),
		K: int64(math.Floor(p[2] / cellSize)),
	}
}

// CellRange returns the inclusive range of cells covered by b once it is
// inflated by margin on every side.
func CellRange(b Box, margin, cellSize float64) (lo, hi Cell) {
	inflated := b.Inflate(margin)
	return CellOf(inflated.Min, cellSize), CellOf(inflated.Max, cellSize)
}
