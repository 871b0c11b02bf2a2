package batch

import "github.com/eccennah/AuditStock/internal/domain/auth"

// CreatedEvent is emitted when a batch passes validation and is stored.
type CreatedEvent struct {
	BatchID   uint64
	ItemCount int
	Actor     auth.Identity
	Height    uint64
}

func (CreatedEvent) EventName() string { return "batch.created" }

func NewCreatedEvent(b *Batch) CreatedEvent {
	return CreatedEvent{
		BatchID:   b.ID,
		ItemCount: b.ItemCount,
		Actor:     b.CreatedBy,
		Height:    b.CreatedAt,
	}
}

// FinalizedEvent is emitted when every item of a batch has settled.
type FinalizedEvent struct {
	BatchID   uint64
	ItemCount int
	Actor     auth.Identity
}

func (FinalizedEvent) EventName() string { return "batch.finalized" }

func NewFinalizedEvent(b *Batch, actor auth.Identity) FinalizedEvent {
	return FinalizedEvent{
		BatchID:   b.ID,
		ItemCount: b.ItemCount,
		Actor:     actor,
	}
}
