package broadphase

import (
	"fmt"

	"github.com/tomz197/hashgrid/internal/geom"
)

// SweepResult counts the work done by one or more sweeps.
type SweepResult struct {
	Buckets    int `json:"buckets"`    // bucket indices examined
	Candidates int `json:"candidates"` // proxy pairs considered
	Dispatched int `json:"dispatched"` // pairs handed to the intersector
}

// Add accumulates other into r.
func (r *SweepResult) Add(other SweepResult) {
	r.Buckets += other.Buckets
	r.Candidates += other.Candidates
	r.Dispatched += other.Dispatched
}

// compatible checks that bucket i of me and bucket i of other cover the
// same cells.
func compatible(me, other *Grid) error {
	if me.primeSize != other.primeSize {
		return fmt.Errorf("%w: %d != %d", ErrTableSizeMismatch, me.primeSize, other.primeSize)
	}
	if me.settings != other.settings {
		return fmt.Errorf("%w: %+v != %+v", ErrSettingsMismatch, me.settings, other.settings)
	}
	return nil
}

// sweep walks the shared bucket indices of me and other and dispatches every
// untested pair whose boxes overlap within the alarm distance.
//
// Pairs are reported as (me, other) unless swap is set, in which case they
// are reported as (other, me) and other's proxies own the dedup lists.
func sweep(me, other *Grid, phase NarrowPhase, stamp int64, ei Intersector, swap bool) (SweepResult, error) {
	var res SweepResult
	if err := compatible(me, other); err != nil {
		return res, err
	}

	first, second := me.model, other.model
	if swap {
		first, second = second, first
	}

	out := phase.DetectionOutputs(first, second)
	ei.BeginIntersect(first, second, out)

	done := newPairDeduper(first.Size())
	alarm := me.settings.AlarmDistance

	for i := range me.table {
		mine, theirs := &me.table[i], &other.table[i]
		if !mine.Updated(stamp) || !theirs.Updated(stamp) {
			continue
		}
		res.Buckets++

		for _, p1 := range mine.proxies {
			for _, p2 := range theirs.proxies {
				owner, partner := p1, p2
				if swap {
					owner, partner = p2, p1
				}
				res.Candidates++

				if done.seen(owner.Index, partner.Index) || !geom.Overlaps(owner.Box, partner.Box, alarm) {
					continue
				}
				ei.Intersect(first.Element(owner.Index), second.Element(partner.Index), out)
				done.mark(owner.Index, partner.Index)
				res.Dispatched++
			}
		}
	}

	return res, nil
}
