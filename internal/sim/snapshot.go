package sim

import (
	"time"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/narrow"
)

// Snapshot is an immutable view of one completed step.
type Snapshot struct {
	Step     uint64                 `json:"step"`
	Stamp    int64                  `json:"stamp"`
	Time     time.Time              `json:"time"`
	Delta    time.Duration          `json:"delta_ns"`
	Duration time.Duration          `json:"step_duration_ns"`
	Sweep    broadphase.SweepResult `json:"sweep"`
	Contacts int                    `json:"contacts"`
	Pairs    []narrow.PairCount     `json:"pairs"`
	Grids    []GridSnapshot         `json:"grids"`
	Viewers  int                    `json:"viewers"`
}

// GridSnapshot describes one scene and its grid.
type GridSnapshot struct {
	Name      string           `json:"name"`
	Kind      string           `json:"kind"`
	Bodies    int              `json:"bodies"`
	PrimeSize int              `json:"prime_size"`
	Stats     broadphase.Stats `json:"stats"`
}

// Grid returns the snapshot of the scene named name.
func (s *Snapshot) Grid(name string) (GridSnapshot, bool) {
	for _, g := range s.Grids {
		if g.Name == name {
			return g, true
		}
	}
	return GridSnapshot{}, false
}
