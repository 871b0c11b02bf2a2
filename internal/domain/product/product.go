package product

import (
	"errors"
	"unicode/utf8"
)

// MaxNameLength bounds product names, in code points.
const MaxNameLength = 50

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: not enough stock")
	ErrInvalidName       = errors.New("product: name must be 1..50 characters")
	ErrInvalidPrice      = errors.New("product: price must be zero or greater")
	ErrInvalidStock      = errors.New("product: stock must be zero or greater")
)

// Product is a catalog record. Stock is the authoritative on-hand count and
// is never observably negative at a committed state boundary.
type Product struct {
	ID    uint64
	Name  string
	Price int64
	Stock int64
}

// New validates the field constraints and builds a product record. Zero
// initial stock is allowed. The registry assigns the ID after validation so
// the allocator is only consumed by records that are actually stored.
func New(name string, price, stock int64) (*Product, error) {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrInvalidName
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	return &Product{
		Name:  name,
		Price: price,
		Stock: stock,
	}, nil
}

// Restock increases stock by quantity.
func (p *Product) Restock(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	return nil
}

// Deduct decreases stock by quantity, refusing to go below zero.
func (p *Product) Deduct(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

// Clone returns an independent copy so repository callers cannot alias the
// stored record.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
