package memory

import (
	"context"
	"sync"

	domain "github.com/eccennah/AuditStock/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[uint64]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[uint64]*domain.Product),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		return domain.ErrNotFound
	}
	r.products[p.ID] = p.Clone()
	return nil
}

// UpdateAll writes every product under one lock acquisition. All records are
// verified to exist before any is replaced, so a failed call stores nothing.
func (r *ProductRepository) UpdateAll(ctx context.Context, ps []*domain.Product) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range ps {
		if p == nil {
			continue
		}
		if _, exists := r.products[p.ID]; !exists {
			return domain.ErrNotFound
		}
	}
	for _, p := range ps {
		if p == nil {
			continue
		}
		r.products[p.ID] = p.Clone()
	}
	return nil
}
