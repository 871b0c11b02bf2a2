package clock

import "sync"

// Logical is an in-process stand-in for the host's logical height source:
// a monotonically increasing counter used as a timestamp substitute. Each
// call to Height advances the clock, so two creations never share a height.
type Logical struct {
	mu     sync.Mutex
	height uint64
}

func NewLogical() *Logical {
	return &Logical{}
}

func (c *Logical) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height++
	return c.height
}
