package sim

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/hashgrid/internal/config"
	"github.com/tomz197/hashgrid/internal/logging"
	"github.com/tomz197/hashgrid/internal/scene"
)

// testConfig has two empty scenes: self-colliding rocks and ships, with a
// rule for rock-rock and ship-rock.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Grid = config.GridConfig{CellSize: 2, AlarmDistance: 0.1, TableSize: 101}
	cfg.World = config.WorldConfig{Width: 50, Height: 50, Depth: 50}
	cfg.Scenes = []config.SceneConfig{
		{Name: "rocks", Kind: "rock", MinHalfExtent: 1, MaxHalfExtent: 1, SelfCollide: true},
		{Name: "ships", Kind: "ship", MinHalfExtent: 1, MaxHalfExtent: 1},
	}
	cfg.Rules = []config.RuleConfig{{A: "rock", B: "rock"}, {A: "ship", B: "rock"}}
	cfg.Sim.TickRate = 200
	cfg.Sim.Parallelism = 2
	cfg.Sim.StatsEvery = 1
	return cfg
}

func cube(id int, x, y, z float64) *scene.Body {
	return &scene.Body{ID: id, Pos: mgl64.Vec3{x, y, z}, Half: mgl64.Vec3{1, 1, 1}}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig(), logging.Discard())
	require.NoError(t, err)

	w := s.World()
	rocks, _, ok := w.Scene("rocks")
	require.True(t, ok)
	ships, _, ok := w.Scene("ships")
	require.True(t, ok)

	rocks.Add(cube(1, 10, 10, 10), cube(2, 11, 10, 10), cube(3, 30, 30, 30))
	ships.Add(cube(4, 30.5, 31, 30))
	return s
}

func TestNewWorldState(t *testing.T) {
	cfg := testConfig()
	cfg.Scenes[0].Bodies = 5
	w, err := NewWorldState(cfg)
	require.NoError(t, err)

	require.Len(t, w.Scenes, 2)
	require.Len(t, w.Grids, 2)
	assert.Equal(t, 5, w.Scenes[0].Size())
	assert.Equal(t, 101, w.Grids[0].PrimeSize())
	assert.Same(t, w.Scenes[1], w.Grids[1].Model())
	assert.Equal(t, 2, w.Registry.Len())

	// rocks self pair plus rocks-ships.
	pairs := w.Pairs()
	require.Len(t, pairs, 2)
	assert.Nil(t, pairs[0].B)
	assert.Same(t, w.Grids[1], pairs[1].B)

	_, _, ok := w.Scene("nope")
	assert.False(t, ok)
}

func TestNewWorldState_BadGrid(t *testing.T) {
	cfg := testConfig()
	cfg.Grid.CellSize = 0
	_, err := NewWorldState(cfg)
	assert.Error(t, err)
}

func TestServer_Step(t *testing.T) {
	s := newTestServer(t)

	initial := s.Snapshot()
	require.NotNil(t, initial)
	assert.Zero(t, initial.Step)
	assert.Len(t, initial.Grids, 2)

	require.NoError(t, s.Step(context.Background(), 0))

	snap := s.Snapshot()
	assert.Equal(t, uint64(1), snap.Step)
	assert.Equal(t, int64(1), snap.Stamp)
	assert.Equal(t, 2, snap.Contacts, "rocks 1-2 and ship 4 with rock 3")
	assert.Equal(t, 2, snap.Sweep.Dispatched)

	rocks, ok := snap.Grid("rocks")
	require.True(t, ok)
	assert.Equal(t, 3, rocks.Bodies)
	assert.Positive(t, rocks.Stats.PopulatedCells)

	ship := s.World().Detection.Output(s.World().Scenes[1], s.World().Scenes[0])
	require.NotNil(t, ship)
	require.Len(t, ship.List(), 1)
	assert.Equal(t, 4, ship.List()[0].A.ID)
	assert.Equal(t, 3, ship.List()[0].B.ID)

	require.NoError(t, s.Step(context.Background(), 0))
	assert.Equal(t, uint64(2), s.Snapshot().Step)
	assert.Equal(t, 2, s.Snapshot().Contacts, "detection is reset every step")
}

func TestServer_StepMovesBodies(t *testing.T) {
	s := newTestServer(t)
	rocks := s.World().Scenes[0]
	rocks.Bodies[1].Vel = mgl64.Vec3{10, 0, 0}

	require.NoError(t, s.Step(context.Background(), time.Second))
	assert.Equal(t, 1, s.Snapshot().Contacts, "rock 2 moved away from rock 1")
}

func TestServer_StepCancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := s.World()
	rocks, _, _ := w.Scene("rocks")
	rocks.Body(0).Vel = mgl64.Vec3{1, 0, 0}
	stamp, pos := w.Stamp, rocks.Body(0).Pos

	assert.ErrorIs(t, s.Step(ctx, time.Second), context.Canceled)
	assert.Equal(t, stamp, w.Stamp)
	assert.Zero(t, w.Steps)
	assert.Equal(t, pos, rocks.Body(0).Pos)
	assert.Zero(t, s.Snapshot().Step)
}

// lateCancel reports cancellation through Err while Done never fires, as
// when the context is cancelled after Run last polled it.
type lateCancel struct {
	context.Context
}

func (lateCancel) Err() error { return context.Canceled }

func TestServer_RunCancelledMidStep(t *testing.T) {
	s := newTestServer(t)
	assert.NoError(t, s.Run(lateCancel{context.Background()}))
}

func TestServer_Run(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return s.Snapshot().Step >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestServer_Viewers(t *testing.T) {
	s := newTestServer(t)

	a := s.Attach("alice")
	b := s.Attach("bob")
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, s.Step(context.Background(), 0))
	assert.Equal(t, 2, s.Snapshot().Viewers)

	s.Detach(b.ID)
	_, open := <-b.Events
	assert.False(t, open, "detach closes the event channel")
	s.Detach(b.ID)

	go func() {
		if ev, ok := <-a.Events; ok && ev == EventShutdown {
			s.Detach(a.ID)
		}
	}()

	start := time.Now()
	s.Shutdown(2 * time.Second)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, s.viewerCount())
}

func TestServer_ShutdownTimeout(t *testing.T) {
	s := newTestServer(t)
	s.Attach("stubborn")

	start := time.Now()
	s.Shutdown(100 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, 1, s.viewerCount())
}
