// Package scene provides the moving-box collision models the simulation
// feeds into the broad phase.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World is the box [0, Size) on every axis. Bodies leaving one face come
// back through the opposite one.
type World struct {
	Size mgl64.Vec3
}

// NewWorld creates a world of the given dimensions.
func NewWorld(width, height, depth float64) World {
	return World{Size: mgl64.Vec3{width, height, depth}}
}

// Wrap folds p back into the world on every axis with a positive extent.
func (w World) Wrap(p mgl64.Vec3) mgl64.Vec3 {
	for axis := 0; axis < 3; axis++ {
		size := w.Size[axis]
		if size <= 0 {
			continue
		}
		p[axis] = math.Mod(p[axis], size)
		if p[axis] < 0 {
			p[axis] += size
		}
	}
	return p
}

// Center returns the middle of the world.
func (w World) Center() mgl64.Vec3 {
	return w.Size.Mul(0.5)
}
