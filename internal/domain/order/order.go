package order

import (
	"errors"

	"github.com/eccennah/AuditStock/internal/domain/auth"
)

var (
	ErrNotFound         = errors.New("order: not found")
	ErrInvalidQuantity  = errors.New("order: quantity must be greater than zero")
	ErrAlreadyFinalized = errors.New("order: already finalized")
)

// Order is a settlement record over a single product. It is created as an
// unfinalized, reservation-free placeholder and transitions exactly once to
// finalized; orders are never deleted or re-opened.
type Order struct {
	ID        uint64
	ProductID uint64
	Quantity  int64
	CreatedBy auth.Identity
	CreatedAt uint64 // logical height at creation
	Finalized bool
}

// New validates the quantity and builds an unfinalized order. The engine
// assigns the ID after every check has passed.
func New(productID uint64, quantity int64, createdBy auth.Identity, createdAt uint64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Order{
		ProductID: productID,
		Quantity:  quantity,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}, nil
}

// Finalize marks the order settled. The transition is terminal.
func (o *Order) Finalize() error {
	if o.Finalized {
		return ErrAlreadyFinalized
	}
	o.Finalized = true
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
