package product

import "github.com/eccennah/AuditStock/internal/domain/auth"

// RegisteredEvent is emitted when a product is added to the catalog.
type RegisteredEvent struct {
	ProductID uint64
	Name      string
	Price     int64
	Stock     int64
	Actor     auth.Identity
}

func (RegisteredEvent) EventName() string { return "product.registered" }

func NewRegisteredEvent(p *Product, actor auth.Identity) RegisteredEvent {
	return RegisteredEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Actor:     actor,
	}
}

// RestockedEvent is emitted when stock is increased through restock.
type RestockedEvent struct {
	ProductID uint64
	Quantity  int64
	NewStock  int64
	Actor     auth.Identity
}

func (RestockedEvent) EventName() string { return "product.restocked" }

func NewRestockedEvent(p *Product, quantity int64, actor auth.Identity) RestockedEvent {
	return RestockedEvent{
		ProductID: p.ID,
		Quantity:  quantity,
		NewStock:  p.Stock,
		Actor:     actor,
	}
}
