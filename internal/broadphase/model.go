// Package broadphase implements a spatial-hash broad phase: proxies from a
// collision model are bucketed into a fixed-size hash table every step, and
// two tables are swept bucket by bucket to find the pairs that deserve an
// exact intersection test.
package broadphase

import "github.com/tomz197/hashgrid/internal/geom"

// Element is the geometric element a proxy stands for. The broad phase never
// inspects it; it only hands it to the Intersector.
type Element = any

// Output accumulates detection results for one ordered model pair.
// It is owned by the NarrowPhase and opaque to the broad phase.
type Output = any

// Proxy is the bounding box of one element of a model for the current step.
type Proxy struct {
	Index int // position of the element in its model
	Box   geom.Box
}

// Model is a source of proxies.
type Model interface {
	// Size returns the number of elements; proxy indices are in [0, Size()).
	Size() int

	// EachProxy calls fn for every current top-level proxy.
	EachProxy(fn func(p Proxy))

	// Element resolves a proxy index to its element.
	Element(index int) Element

	// CanCollideWith reports whether elements of the two models may collide.
	CanCollideWith(other Model) bool
}

// Intersector performs the exact test for one ordered model pair.
type Intersector interface {
	// BeginIntersect is called once per sweep, before any Intersect call.
	BeginIntersect(m1, m2 Model, out Output)

	// Intersect tests e1 (from m1) against e2 (from m2) and records any
	// result into out.
	Intersect(e1, e2 Element, out Output)
}

// IntersectionMethod selects the intersector for a pair of models.
type IntersectionMethod interface {
	// FindIntersector returns the intersector for (m1, m2), or nil when the
	// two models must not be tested. swap reports that the intersector
	// expects the models in (m2, m1) order.
	FindIntersector(m1, m2 Model) (ei Intersector, swap bool)
}

// NarrowPhase owns the detection outputs of the current step.
type NarrowPhase interface {
	// DetectionOutputs returns the output for the ordered pair (m1, m2).
	DetectionOutputs(m1, m2 Model) Output
}
