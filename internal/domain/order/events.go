package order

import "github.com/eccennah/AuditStock/internal/domain/auth"

// CreatedEvent is emitted when an order placeholder is recorded. No stock
// moves at this point.
type CreatedEvent struct {
	OrderID   uint64
	ProductID uint64
	Quantity  int64
	Actor     auth.Identity
	Height    uint64
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Actor:     o.CreatedBy,
		Height:    o.CreatedAt,
	}
}

// FinalizedEvent is emitted when an order settles and stock is deducted.
type FinalizedEvent struct {
	OrderID        uint64
	ProductID      uint64
	Quantity       int64
	RemainingStock int64
	Actor          auth.Identity
}

func (FinalizedEvent) EventName() string { return "order.finalized" }

func NewFinalizedEvent(o *Order, remainingStock int64, actor auth.Identity) FinalizedEvent {
	return FinalizedEvent{
		OrderID:        o.ID,
		ProductID:      o.ProductID,
		Quantity:       o.Quantity,
		RemainingStock: remainingStock,
		Actor:          actor,
	}
}
