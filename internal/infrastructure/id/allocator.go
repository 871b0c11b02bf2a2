package id

import "sync"

// Allocator hands out monotonically increasing identifiers. Next returns the
// current value and then increments; identifiers are never reused and never
// decrease, even across conceptual deletions (there are none).
type Allocator struct {
	mu   sync.Mutex
	next uint64
}

// NewAllocator starts the sequence at first. Registries start at 1 so the
// zero id stays free as an "absent" marker.
func NewAllocator(first uint64) *Allocator {
	return &Allocator{next: first}
}

func (a *Allocator) Next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}

// Peek reports the id the next call to Next will return, without consuming it.
func (a *Allocator) Peek() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
