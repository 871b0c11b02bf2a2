package batch

import "context"

type Repository interface {
	// Insert persists the header and all items in one call; a batch is
	// never stored with a partial item set.
	Insert(ctx context.Context, b *Batch, items []Item) error
	FindByID(ctx context.Context, id uint64) (*Batch, error)
	FindItem(ctx context.Context, batchID uint64, index int) (*Item, error)
	Update(ctx context.Context, b *Batch) error
}
