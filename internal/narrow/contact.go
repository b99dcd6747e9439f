// Package narrow is the exact phase behind the broad phase: it tests the
// candidate pairs of box bodies and keeps the resulting contacts per model
// pair for the current step.
package narrow

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/hashgrid/internal/scene"
)

// Contact is one pair of overlapping bodies.
type Contact struct {
	A, B  *scene.Body
	Depth mgl64.Vec3 // per-axis penetration
}

// Contacts is the detection output of one ordered scene pair.
// Add is safe for concurrent use.
type Contacts struct {
	First, Second string // scene names

	mu     sync.Mutex
	begins int
	list   []Contact
}

func (c *Contacts) begin() {
	c.mu.Lock()
	c.begins++
	c.mu.Unlock()
}

// Add records a contact.
func (c *Contacts) Add(ct Contact) {
	c.mu.Lock()
	c.list = append(c.list, ct)
	c.mu.Unlock()
}

// Len returns the number of contacts.
func (c *Contacts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

// Begins returns how many sweeps opened this output.
func (c *Contacts) Begins() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begins
}

// List returns a copy of the contacts.
func (c *Contacts) List() []Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Contact(nil), c.list...)
}
