package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/eccennah/AuditStock/internal/domain/batch"
)

type itemKey struct {
	batchID uint64
	index   int
}

type BatchRepository struct {
	mu      sync.RWMutex
	batches map[uint64]*domain.Batch
	items   map[itemKey]domain.Item
}

func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[uint64]*domain.Batch),
		items:   make(map[itemKey]domain.Item),
	}
}

// Insert stores the header and its items under one lock acquisition so a
// batch is never visible with a partial item set.
func (r *BatchRepository) Insert(ctx context.Context, b *domain.Batch, items []domain.Item) error {
	_ = ctx
	if b == nil || b.ID == 0 {
		return fmt.Errorf("batch repository: id is required")
	}
	if len(items) != b.ItemCount {
		return fmt.Errorf("batch repository: header says %d items, got %d", b.ItemCount, len(items))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches[b.ID] = b.Clone()
	for _, it := range items {
		r.items[itemKey{batchID: b.ID, index: it.Index}] = it
	}
	return nil
}

func (r *BatchRepository) FindByID(ctx context.Context, id uint64) (*domain.Batch, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *BatchRepository) FindItem(ctx context.Context, batchID uint64, index int) (*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[itemKey{batchID: batchID, index: index}]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := it
	return &clone, nil
}

func (r *BatchRepository) Update(ctx context.Context, b *domain.Batch) error {
	_ = ctx
	if b == nil || b.ID == 0 {
		return fmt.Errorf("batch repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.batches[b.ID]; !exists {
		return domain.ErrNotFound
	}
	r.batches[b.ID] = b.Clone()
	return nil
}
