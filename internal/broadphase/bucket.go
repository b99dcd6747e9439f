package broadphase

// neverStamped marks a bucket that was never populated.
const neverStamped = -1

// Bucket holds the proxies hashed to one slot of a grid table.
// Its content is only valid for the stamp it was last written at: a bucket
// with an older stamp is logically empty and is cleared on the first insert
// of a newer stamp. The proxy slice is reused between steps.
type Bucket struct {
	stamp   int64
	proxies []Proxy
}

func newBucket() Bucket {
	return Bucket{stamp: neverStamped}
}

// add appends p, first dropping the content of an older stamp.
func (b *Bucket) add(p Proxy, stamp int64) {
	if b.stamp < stamp {
		b.stamp = stamp
		b.proxies = b.proxies[:0]
	}
	b.proxies = append(b.proxies, p)
}

// Updated reports whether the bucket holds data for stamp.
func (b *Bucket) Updated(stamp int64) bool {
	return b.stamp >= stamp
}

// NeedsCollision reports whether the bucket holds at least two proxies for stamp.
func (b *Bucket) NeedsCollision(stamp int64) bool {
	return b.Updated(stamp) && len(b.proxies) >= 2
}

// Stamp returns the stamp of the last insert, or -1.
func (b *Bucket) Stamp() int64 {
	return b.stamp
}

// Proxies returns the proxies in insertion order. The slice is only valid
// until the next refresh of the owning grid.
func (b *Bucket) Proxies() []Proxy {
	return b.proxies
}

// Len returns the number of stored proxies, stale or not.
func (b *Bucket) Len() int {
	return len(b.proxies)
}

func (b *Bucket) clear() {
	b.stamp = neverStamped
	b.proxies = b.proxies[:0]
}
