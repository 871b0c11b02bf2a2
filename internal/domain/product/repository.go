package product

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uint64) (*Product, error)
	Update(ctx context.Context, p *Product) error
	// UpdateAll writes every given product in one call; either all records
	// are stored or none. Used by the batch commit.
	UpdateAll(ctx context.Context, ps []*Product) error
}
