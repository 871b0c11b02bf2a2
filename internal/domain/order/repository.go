package order

import "context"

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uint64) (*Order, error)
	Update(ctx context.Context, o *Order) error
}
