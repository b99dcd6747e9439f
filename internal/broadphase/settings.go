package broadphase

import (
	"fmt"
	"math"
)

// Settings are the spatial parameters shared by every grid of a simulation.
// They are fixed when a grid is built; grids swept together must agree.
type Settings struct {
	// CellSize is the edge length of a grid cell. Tune it against the
	// typical proxy size: every proxy is inserted into each cell it covers.
	CellSize float64

	// AlarmDistance is the margin under which two boxes count as touching.
	AlarmDistance float64
}

// HalfMargin is the inflation applied to each box when bucketing.
func (s Settings) HalfMargin() float64 {
	return s.AlarmDistance / 2
}

// Validate checks that the cell size is positive and the alarm distance is
// not negative.
func (s Settings) Validate() error {
	if !(s.CellSize > 0) || math.IsInf(s.CellSize, 0) {
		return fmt.Errorf("%w: cell size %g must be a positive number", ErrInvalidSettings, s.CellSize)
	}
	if !(s.AlarmDistance >= 0) || math.IsInf(s.AlarmDistance, 0) {
		return fmt.Errorf("%w: alarm distance %g must be >= 0", ErrInvalidSettings, s.AlarmDistance)
	}
	return nil
}
