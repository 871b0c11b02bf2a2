// Package application holds the ports shared by the catalog, order, and
// batch use cases.
package application

// IDAllocator hands out monotonically increasing identifiers; Next returns
// the current value and then increments.
type IDAllocator interface {
	Next() uint64
}

// HeightSource supplies the host's logical height, read once per order or
// batch creation and used as a timestamp substitute.
type HeightSource interface {
	Height() uint64
}

// Gate serializes mutating state transitions; the host guarantees a single
// logical writer per transition and Do is how the use cases hold it.
type Gate interface {
	Do(fn func() error) error
}
