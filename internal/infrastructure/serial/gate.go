package serial

import "sync"

// Gate serializes state transitions. The settlement rules assume a single
// logical writer per transition; every mutating use case runs its
// check-then-write section inside Do so the guarantee holds even when the
// HTTP host dispatches handlers concurrently.
type Gate struct {
	mu sync.Mutex
}

func NewGate() *Gate {
	return &Gate{}
}

// Do runs fn with the gate held and returns fn's error.
func (g *Gate) Do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}
