package narrow

import (
	"sort"
	"sync"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/scene"
)

type modelPair struct {
	first, second broadphase.Model
}

// Detection owns the outputs of one step, one per ordered model pair.
// It is safe for the concurrent sweeps of broadphase.CollideAll.
type Detection struct {
	mu      sync.Mutex
	outputs map[modelPair]*Contacts
}

var _ broadphase.NarrowPhase = (*Detection)(nil)

// NewDetection creates an empty detection.
func NewDetection() *Detection {
	return &Detection{outputs: make(map[modelPair]*Contacts)}
}

// DetectionOutputs returns the *Contacts for (m1, m2), creating it on first
// use.
func (d *Detection) DetectionOutputs(m1, m2 broadphase.Model) broadphase.Output {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := modelPair{m1, m2}
	out, ok := d.outputs[key]
	if !ok {
		out = &Contacts{First: modelName(m1), Second: modelName(m2)}
		d.outputs[key] = out
	}
	return out
}

// Reset drops the outputs of the previous step.
func (d *Detection) Reset() {
	d.mu.Lock()
	clear(d.outputs)
	d.mu.Unlock()
}

// Total returns the number of contacts over all pairs.
func (d *Detection) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, out := range d.outputs {
		n += out.Len()
	}
	return n
}

// PairCount is the contact count of one ordered scene pair.
type PairCount struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	Contacts int    `json:"contacts"`
}

// Pairs returns the contact count of every output, sorted by scene names.
func (d *Detection) Pairs() []PairCount {
	d.mu.Lock()
	pairs := make([]PairCount, 0, len(d.outputs))
	for _, out := range d.outputs {
		pairs = append(pairs, PairCount{First: out.First, Second: out.Second, Contacts: out.Len()})
	}
	d.mu.Unlock()

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	return pairs
}

// Output returns the contacts recorded for (m1, m2), or nil.
func (d *Detection) Output(m1, m2 broadphase.Model) *Contacts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs[modelPair{m1, m2}]
}

func modelName(m broadphase.Model) string {
	if s, ok := m.(*scene.Scene); ok {
		return s.Name
	}
	return ""
}
