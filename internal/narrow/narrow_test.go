package narrow

import (
	"context"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/scene"
)

func body(id int, x, y, z, half float64) *scene.Body {
	return &scene.Body{ID: id, Pos: mgl64.Vec3{x, y, z}, Half: mgl64.Vec3{half, half, half}}
}

func TestRegistry_FindIntersector(t *testing.T) {
	rocks := scene.New("rocks", "rock")
	ships := scene.New("ships", "ship")
	ghosts := scene.New("ghosts", "ghost")

	r := NewRegistry()
	r.Register("ship", "rock", BoxIntersector{})
	r.Register("rock", "rock", BoxIntersector{})
	assert.Equal(t, 2, r.Len())

	ei, swap := r.FindIntersector(ships, rocks)
	assert.NotNil(t, ei)
	assert.False(t, swap)

	ei, swap = r.FindIntersector(rocks, ships)
	assert.NotNil(t, ei)
	assert.True(t, swap, "registered as (ship, rock)")

	ei, swap = r.FindIntersector(rocks, rocks)
	assert.NotNil(t, ei)
	assert.False(t, swap)

	ei, _ = r.FindIntersector(ghosts, rocks)
	assert.Nil(t, ei)
}

func TestDetection_Outputs(t *testing.T) {
	a := scene.New("a", "x")
	b := scene.New("b", "x")
	d := NewDetection()

	ab := d.DetectionOutputs(a, b)
	assert.Same(t, ab, d.DetectionOutputs(a, b))
	assert.NotSame(t, ab, d.DetectionOutputs(b, a), "outputs are per ordered pair")
	assert.Same(t, ab, d.Output(a, b))

	ab.(*Contacts).Add(Contact{A: body(1, 0, 0, 0, 1), B: body(2, 0, 0, 0, 1)})
	assert.Equal(t, 1, d.Total())
	assert.Equal(t, []PairCount{
		{First: "a", Second: "b", Contacts: 1},
		{First: "b", Second: "a", Contacts: 0},
	}, d.Pairs())

	d.Reset()
	assert.Equal(t, 0, d.Total())
	assert.Nil(t, d.Output(a, b))
}

func TestDetection_Concurrent(t *testing.T) {
	scenes := []*scene.Scene{scene.New("a", "x"), scene.New("b", "x"), scene.New("c", "x")}
	d := NewDetection()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := d.DetectionOutputs(scenes[i%3], scenes[(i+1)%3]).(*Contacts)
			out.Add(Contact{})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, d.Total())
	assert.Len(t, d.Pairs(), 3)
}

func TestBoxIntersector(t *testing.T) {
	out := &Contacts{}
	var ei BoxIntersector

	ei.BeginIntersect(nil, nil, out)
	assert.Equal(t, 1, out.Begins())

	a := body(1, 0, 0, 0, 1)
	b := body(2, 1.5, 0.5, 0, 1)
	c := body(3, 2.5, 0, 0, 0.4)

	ei.Intersect(a, b, out)
	ei.Intersect(a, c, out)
	ei.Intersect(a, "not a body", out)

	list := out.List()
	require.Len(t, list, 1)
	assert.Same(t, a, list[0].A)
	assert.Same(t, b, list[0].B)
	assert.True(t, list[0].Depth.ApproxEqual(mgl64.Vec3{0.5, 1.5, 2}), "got %v", list[0].Depth)
}

// TestPipeline runs the broad phase over real scenes and checks that only
// registered kind pairs produce contacts, in registration order.
func TestPipeline(t *testing.T) {
	rocks := scene.New("rocks", "rock")
	rocks.SelfCollide = true
	rocks.Add(body(1, 5, 5, 5, 1), body(2, 6, 5, 5, 1), body(3, 40, 40, 40, 1))

	ships := scene.New("ships", "ship")
	ships.Add(body(10, 5.5, 6.5, 5, 0.6))

	shots := scene.New("shots", "shot")
	shots.Add(body(20, 6, 5, 5, 0.1))

	r := NewRegistry()
	r.Register("ship", "rock", BoxIntersector{})
	r.Register("rock", "rock", BoxIntersector{})

	settings := broadphase.Settings{CellSize: 4, AlarmDistance: 0.2}
	grids := make(map[*scene.Scene]*broadphase.Grid)
	for _, s := range []*scene.Scene{rocks, ships, shots} {
		g, err := broadphase.NewGrid(settings, 127, s)
		require.NoError(t, err)
		g.Refresh(1)
		grids[s] = g
	}

	pairs := []broadphase.GridPair{
		{A: grids[rocks]},
		{A: grids[rocks], B: grids[ships]},
		{A: grids[rocks], B: grids[shots]},
		{A: grids[ships], B: grids[shots]},
	}

	d := NewDetection()
	_, err := broadphase.CollideAll(context.Background(), pairs, d, r, 1, 2)
	require.NoError(t, err)

	self := d.Output(rocks, rocks)
	require.NotNil(t, self)
	require.Len(t, self.List(), 1)
	assert.Equal(t, 1, self.List()[0].A.ID)
	assert.Equal(t, 2, self.List()[0].B.ID)

	// ships is smaller and the intersector is registered as (ship, rock).
	cross := d.Output(ships, rocks)
	require.NotNil(t, cross)
	assert.Equal(t, 1, cross.Begins())
	require.Len(t, cross.List(), 2)
	for _, ct := range cross.List() {
		assert.Equal(t, 10, ct.A.ID)
	}

	assert.Nil(t, d.Output(shots, rocks), "no rule for shots")
	assert.Nil(t, d.Output(rocks, shots))
	assert.Equal(t, 3, d.Total())
}
