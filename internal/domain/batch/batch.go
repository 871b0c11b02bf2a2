package batch

import (
	"errors"

	"github.com/eccennah/AuditStock/internal/domain/auth"
)

// MaxItems is the fixed capacity of a batch. ItemCount is always in
// 1..MaxItems and never changes after creation.
const MaxItems = 20

var (
	ErrNotFound         = errors.New("batch: not found")
	ErrAlreadyFinalized = errors.New("batch: already finalized")
	ErrEmpty            = errors.New("batch: no items")
	ErrTooManyItems     = errors.New("batch: item count exceeds capacity")
	ErrItemNotFound     = errors.New("batch: item not found")
)

// LineItem is one (product, quantity) pair of a batch. Items are immutable
// once stored and are addressed by (batch id, index).
type LineItem struct {
	ProductID uint64
	Quantity  int64
}

// Item is a stored line item with its composite key.
type Item struct {
	BatchID uint64
	Index   int
	LineItem
}

// Batch is the header of an ordered, fixed-capacity set of line items that
// settle together or not at all.
type Batch struct {
	ID        uint64
	CreatedBy auth.Identity
	CreatedAt uint64 // logical height at creation
	Finalized bool
	ItemCount int
}

// New validates the item count bounds and builds a batch header. The engine
// assigns the ID only after every item has passed validation.
func New(itemCount int, createdBy auth.Identity, createdAt uint64) (*Batch, error) {
	if itemCount == 0 {
		return nil, ErrEmpty
	}
	if itemCount > MaxItems {
		return nil, ErrTooManyItems
	}
	return &Batch{
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		ItemCount: itemCount,
	}, nil
}

// Finalize marks the batch settled. The transition is terminal.
func (b *Batch) Finalize() error {
	if b.Finalized {
		return ErrAlreadyFinalized
	}
	b.Finalized = true
	return nil
}

func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
