package broadphase

import "fmt"

// Stats describes how proxies are spread over a grid for one stamp.
// Use it to tune the cell size.
type Stats struct {
	TableSize      int     `json:"table_size"`
	PopulatedCells int     `json:"populated_cells"`
	Proxies        int     `json:"proxies"` // proxy entries, one per covered bucket
	MaxPerCell     int     `json:"max_per_cell"`
	MeanPerCell    float64 `json:"mean_per_cell"`
}

// Stats collects occupancy statistics over the buckets updated for stamp.
func (g *Grid) Stats(stamp int64) Stats {
	s := Stats{TableSize: len(g.table)}
	for i := range g.table {
		b := &g.table[i]
		if !b.Updated(stamp) {
			continue
		}
		n := len(b.proxies)
		s.PopulatedCells++
		s.Proxies += n
		if n > s.MaxPerCell {
			s.MaxPerCell = n
		}
	}
	if s.PopulatedCells > 0 {
		s.MeanPerCell = float64(s.Proxies) / float64(s.PopulatedCells)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("cells=%d/%d proxies=%d mean=%.2f max=%d",
		s.PopulatedCells, s.TableSize, s.Proxies, s.MeanPerCell, s.MaxPerCell)
}

// KeyVals returns the stats as alternating keys and values for a
// structured logger.
func (s Stats) KeyVals() []any {
	return []any{
		"table", s.TableSize,
		"cells", s.PopulatedCells,
		"proxies", s.Proxies,
		"mean", s.MeanPerCell,
		"max", s.MaxPerCell,
	}
}
