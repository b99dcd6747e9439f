package sim

import (
	"fmt"
	"time"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/config"
	"github.com/tomz197/hashgrid/internal/narrow"
	"github.com/tomz197/hashgrid/internal/scene"
)

// WorldState holds the scenes, one grid per scene, and the per-step
// detection. It is owned by the Server and never shared with viewers;
// they only see snapshots.
type WorldState struct {
	World     scene.World
	Scenes    []*scene.Scene
	Grids     []*broadphase.Grid
	Detection *narrow.Detection
	Registry  *narrow.Registry
	Stamp     int64
	Steps     uint64
	Delta     time.Duration // last step delta

	pairs []broadphase.GridPair // sweep list, fixed at construction
}

// NewWorldState builds the scenes of cfg, a grid for each one and the
// intersector registry from cfg.Rules.
func NewWorldState(cfg config.Config) (*WorldState, error) {
	w := &WorldState{
		World:     scene.NewWorld(cfg.World.Width, cfg.World.Height, cfg.World.Depth),
		Detection: narrow.NewDetection(),
		Registry:  narrow.NewRegistry(),
	}

	spawner := scene.NewSpawner(w.World, cfg.Sim.Seed)
	settings := cfg.GridSettings()

	for _, sc := range cfg.Scenes {
		s := spawner.Build(sc)
		g, err := broadphase.NewGrid(settings, cfg.Grid.TableSize, s)
		if err != nil {
			return nil, fmt.Errorf("grid for scene %q: %w", sc.Name, err)
		}
		w.Scenes = append(w.Scenes, s)
		w.Grids = append(w.Grids, g)
	}

	for _, rule := range cfg.Rules {
		w.Registry.Register(rule.A, rule.B, narrow.BoxIntersector{})
	}

	w.pairs = buildPairs(w.Scenes, w.Grids)
	return w, nil
}

// buildPairs lists every unordered pair of scenes that may collide, plus a
// self pair for each self-colliding scene.
func buildPairs(scenes []*scene.Scene, grids []*broadphase.Grid) []broadphase.GridPair {
	var pairs []broadphase.GridPair
	for i, s := range scenes {
		if s.CanCollideWith(s) {
			pairs = append(pairs, broadphase.GridPair{A: grids[i]})
		}
		for j := i + 1; j < len(scenes); j++ {
			if s.CanCollideWith(scenes[j]) {
				pairs = append(pairs, broadphase.GridPair{A: grids[i], B: grids[j]})
			}
		}
	}
	return pairs
}

// Pairs returns the grid pairs swept every step.
func (w *WorldState) Pairs() []broadphase.GridPair {
	return w.pairs
}

// Scene returns the scene named name and its grid.
func (w *WorldState) Scene(name string) (*scene.Scene, *broadphase.Grid, bool) {
	for i, s := range w.Scenes {
		if s.Name == name {
			return s, w.Grids[i], true
		}
	}
	return nil, nil, false
}

// advance moves every scene by dt and rebuckets all grids under a new stamp.
func (w *WorldState) advance(dt time.Duration) {
	secs := dt.Seconds()
	for _, s := range w.Scenes {
		s.Update(secs, w.World)
	}

	w.Stamp++
	w.Steps++
	w.Delta = dt
	for _, g := range w.Grids {
		g.Refresh(w.Stamp)
	}
	w.Detection.Reset()
}
