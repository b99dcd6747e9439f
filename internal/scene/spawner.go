package scene

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/hashgrid/internal/config"
)

// Spawner fills scenes with random bodies. Body IDs are unique across all
// scenes filled by the same spawner.
type Spawner struct {
	world  World
	rng    *rand.Rand
	nextID int
}

// NewSpawner creates a spawner placing bodies in w, seeded for
// reproducible runs.
func NewSpawner(w World, seed int64) *Spawner {
	return &Spawner{
		world:  w,
		rng:    rand.New(rand.NewSource(seed)),
		nextID: 1,
	}
}

// Build creates the scene described by cfg and tops it up to cfg.Bodies.
func (sp *Spawner) Build(cfg config.SceneConfig) *Scene {
	s := New(cfg.Name, cfg.Kind)
	s.SelfCollide = cfg.SelfCollide
	if cfg.Group != 0 {
		s.Group = cfg.Group
	}
	if cfg.Mask != 0 {
		s.Mask = cfg.Mask
	}
	sp.Fill(s, cfg, cfg.Bodies)
	return s
}

// Fill adds bodies to s until it holds target of them.
func (sp *Spawner) Fill(s *Scene, cfg config.SceneConfig, target int) {
	for s.Size() < target {
		s.Add(sp.body(cfg))
	}
}

func (sp *Spawner) body(cfg config.SceneConfig) *Body {
	b := &Body{ID: sp.nextID}
	sp.nextID++

	for axis := 0; axis < 3; axis++ {
		b.Pos[axis] = sp.rng.Float64() * sp.world.Size[axis]
		b.Half[axis] = cfg.MinHalfExtent + sp.rng.Float64()*(cfg.MaxHalfExtent-cfg.MinHalfExtent)
	}

	if cfg.MaxSpeed > 0 {
		dir := mgl64.Vec3{
			sp.rng.NormFloat64(),
			sp.rng.NormFloat64(),
			sp.rng.NormFloat64(),
		}
		if l := dir.Len(); l > 0 {
			b.Vel = dir.Mul(sp.rng.Float64() * cfg.MaxSpeed / l)
		}
	}
	return b
}
