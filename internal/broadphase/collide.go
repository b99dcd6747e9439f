package broadphase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomz197/hashgrid/internal/geom"
)

// Collide finds the candidate pairs between g and other for stamp and hands
// them to the intersector chosen by methods. Both grids must already be
// refreshed for stamp. Passing g itself as other runs CollideSelf.
//
// Models that cannot collide, or for which methods has no intersector, are
// skipped without error. The grid with the smaller model is swept first so
// the dedup lists stay small unless the intersector asks for the reverse
// order.
func (g *Grid) Collide(other *Grid, phase NarrowPhase, methods IntersectionMethod, stamp int64) (SweepResult, error) {
	if other == g {
		return g.CollideSelf(phase, methods, stamp)
	}
	if !g.Initialized() || !other.Initialized() {
		return SweepResult{}, ErrNotInitialized
	}

	m1, m2 := g.model, other.model
	if !m1.CanCollideWith(m2) {
		return SweepResult{}, nil
	}

	first, second := g, other
	if m1.Size() > m2.Size() {
		first, second = other, g
	}

	ei, swap := methods.FindIntersector(first.model, second.model)
	if ei == nil {
		return SweepResult{}, nil
	}

	return sweep(first, second, phase, stamp, ei, swap)
}

// CollideSelf finds the candidate pairs among the proxies of g's own model.
// Every unordered pair of distinct proxies sharing a bucket is box tested,
// and each overlapping pair is dispatched once, lower index first.
func (g *Grid) CollideSelf(phase NarrowPhase, methods IntersectionMethod, stamp int64) (SweepResult, error) {
	var res SweepResult
	if !g.Initialized() {
		return res, ErrNotInitialized
	}

	m := g.model
	if !m.CanCollideWith(m) {
		return res, nil
	}
	ei, _ := methods.FindIntersector(m, m)
	if ei == nil {
		return res, nil
	}

	out := phase.DetectionOutputs(m, m)
	ei.BeginIntersect(m, m, out)

	done := make(pairSet)
	alarm := g.settings.AlarmDistance

	for i := range g.table {
		b := &g.table[i]
		if !b.NeedsCollision(stamp) {
			continue
		}
		res.Buckets++

		ps := b.proxies
		for j := 0; j < len(ps)-1; j++ {
			for k := j + 1; k < len(ps); k++ {
				p1, p2 := ps[j], ps[k]
				// Two cells of one proxy may hash to the same bucket.
				if p1.Index == p2.Index {
					continue
				}
				res.Candidates++

				if !geom.Overlaps(p1.Box, p2.Box, alarm) || !done.insert(p1.Index, p2.Index) {
					continue
				}
				if p1.Index > p2.Index {
					p1, p2 = p2, p1
				}
				ei.Intersect(m.Element(p1.Index), m.Element(p2.Index), out)
				res.Dispatched++
			}
		}
	}

	return res, nil
}

// GridPair names two grids to sweep together. A pair whose B is nil or
// equal to A is a self sweep.
type GridPair struct {
	A, B *Grid
}

func (p GridPair) self() bool {
	return p.B == nil || p.B == p.A
}

// CollideAll sweeps every pair for stamp, running up to limit pairs at once.
// Sweeps only read the grids, so pairs are independent; phase must accept
// concurrent DetectionOutputs calls when limit > 1.
//
// Cancelling ctx stops pairs that have not started yet. The first error
// aborts the remaining pairs and is returned with the totals of the pairs
// that completed.
func CollideAll(ctx context.Context, pairs []GridPair, phase NarrowPhase, methods IntersectionMethod, stamp int64, limit int) (SweepResult, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]SweepResult, len(pairs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	started := 0
	for i, pair := range pairs {
		if egCtx.Err() != nil {
			break
		}
		started++
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			var (
				res SweepResult
				err error
			)
			if pair.self() {
				res, err = pair.A.CollideSelf(phase, methods, stamp)
			} else {
				res, err = pair.A.Collide(pair.B, phase, methods, stamp)
			}
			if err != nil {
				return fmt.Errorf("pair %d: %w", i, err)
			}

			results[i] = res
			recordSweepMetrics(ctx, res, pair.self())
			return nil
		})
	}

	err := eg.Wait()
	if err == nil && started < len(pairs) {
		err = ctx.Err()
	}

	var total SweepResult
	for _, r := range results {
		total.Add(r)
	}
	return total, err
}
