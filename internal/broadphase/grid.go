package broadphase

import (
	"github.com/tomz197/hashgrid/internal/geom"
)

// Large primes of the 3D spatial hash.
const (
	hashP1 = 73856093
	hashP2 = 19349663
	hashP3 = 83492791
)

// Grid is a spatial hash of the proxies of one model.
// Cells of an unbounded integer lattice are folded into a fixed table whose
// size is a prime. Distinct cells may share a bucket; that only costs extra
// box tests, never a missed pair.
//
// A grid is written by Refresh only. Sweeps read it, so several sweeps over
// the same refreshed grids may run concurrently.
type Grid struct {
	settings  Settings
	tableSize int // requested size
	primeSize int // realized size, smallest prime >= tableSize
	table     []Bucket
	model     Model
	stamp     int64
}

// NewGrid creates a grid over model with at least tableSize buckets.
// The grid holds no data until the first Refresh.
func NewGrid(settings Settings, tableSize int, model Model) (*Grid, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrNilModel
	}

	g := &Grid{
		settings: settings,
		model:    model,
		stamp:    neverStamped,
	}
	g.Resize(tableSize)
	return g, nil
}

// Reset rebinds the grid to model and rebuilds an empty table of tableSize.
// Use it when the model is restructured.
func (g *Grid) Reset(tableSize int, model Model) error {
	if model == nil {
		return ErrNilModel
	}
	g.model = model
	g.Clear()
	g.Resize(tableSize)
	return nil
}

// Resize allocates a fresh table of NextPrime(n) empty buckets. Sizes below
// one are promoted to one. All bucketed data is dropped and the next
// Refresh repopulates the table whatever its stamp.
func (g *Grid) Resize(n int) {
	if n < 1 {
		n = 1
	}
	g.tableSize = n
	g.primeSize = NextPrime(n)
	g.table = make([]Bucket, g.primeSize)
	for i := range g.table {
		g.table[i] = newBucket()
	}
	g.stamp = neverStamped
}

// Clear releases the table.
func (g *Grid) Clear() {
	g.tableSize = 0
	g.primeSize = 0
	g.table = nil
	g.stamp = neverStamped
}

// Initialized reports whether the grid has a model and a table.
func (g *Grid) Initialized() bool {
	return g != nil && g.model != nil && len(g.table) > 0
}

// Index hashes integer cell coordinates to a bucket index in [0, PrimeSize()).
func (g *Grid) Index(i, j, k int64) int {
	n := int64(g.primeSize)
	h := (i*hashP1 ^ j*hashP2 ^ k*hashP3) % n
	if h < 0 {
		h += n
	}
	return int(h)
}

// Cell returns the bucket that cell (i, j, k) hashes to.
func (g *Grid) Cell(i, j, k int64) *Bucket {
	return &g.table[g.Index(i, j, k)]
}

// Bucket returns the bucket at table index idx.
func (g *Grid) Bucket(idx int) *Bucket {
	return &g.table[idx]
}

// Refresh rebuckets the proxies of the model for stamp.
// Stamps only move forward: a stamp not newer than the last one is ignored,
// which makes repeated calls within a step free.
//
// Each proxy is inflated by half the alarm distance and inserted into every
// cell of the inclusive range its inflated box covers.
func (g *Grid) Refresh(stamp int64) {
	if g.stamp >= stamp || !g.Initialized() {
		return
	}
	g.stamp = stamp

	margin := g.settings.HalfMargin()
	cellSize := g.settings.CellSize

	g.model.EachProxy(func(p Proxy) {
		lo, hi := geom.CellRange(p.Box, margin, cellSize)
		for i := lo.I; i <= hi.I; i++ {
			for j := lo.J; j <= hi.J; j++ {
				for k := lo.K; k <= hi.K; k++ {
					g.table[g.Index(i, j, k)].add(p, stamp)
				}
			}
		}
	})
}

// Model returns the model the grid was built over.
func (g *Grid) Model() Model {
	return g.model
}

// Settings returns the spatial settings of the grid.
func (g *Grid) Settings() Settings {
	return g.settings
}

// Stamp returns the stamp of the last refresh, or -1.
func (g *Grid) Stamp() int64 {
	return g.stamp
}

// TableSize returns the requested table size.
func (g *Grid) TableSize() int {
	return g.tableSize
}

// PrimeSize returns the number of buckets.
func (g *Grid) PrimeSize() int {
	return g.primeSize
}
