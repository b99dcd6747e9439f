package broadphase

// pairDeduper records, per owner proxy index, the partner indices already
// tested during one cross-grid sweep. The owner side stays fixed for the
// whole sweep, so a pair met again in another shared bucket always looks up
// the same list and one direction is enough.
type pairDeduper struct {
	done [][]int
}

func newPairDeduper(owners int) *pairDeduper {
	return &pairDeduper{done: make([][]int, owners)}
}

func (d *pairDeduper) seen(owner, partner int) bool {
	for _, j := range d.done[owner] {
		if j == partner {
			return true
		}
	}
	return false
}

func (d *pairDeduper) mark(owner, partner int) {
	d.done[owner] = append(d.done[owner], partner)
}

// pairKey is an unordered pair of proxy indices of one model.
type pairKey struct {
	lo, hi int
}

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// pairSet deduplicates unordered pairs during a self sweep.
type pairSet map[pairKey]struct{}

// insert adds the pair and reports whether it was absent.
func (s pairSet) insert(a, b int) bool {
	key := makePairKey(a, b)
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}
