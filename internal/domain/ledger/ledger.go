package ledger

import (
	"context"

	"github.com/eccennah/AuditStock/internal/domain/auth"
)

// Kind names the operation an entry records.
type Kind string

const (
	KindProductRegistered Kind = "product_registered"
	KindProductRestocked  Kind = "product_restocked"
	KindOrderCreated      Kind = "order_created"
	KindOrderFinalized    Kind = "order_finalized"
	KindBatchCreated      Kind = "batch_created"
	KindBatchFinalized    Kind = "batch_finalized"
)

// Entry is one immutable line of the audit ledger. Seq is assigned by the
// ledger on append and is strictly increasing.
type Entry struct {
	Seq        uint64
	Kind       Kind
	Actor      auth.Identity
	ProductID  uint64 // zero when the entry is not product-scoped
	EntityID   uint64 // order or batch id when applicable
	StockDelta int64  // signed stock movement; zero for non-stock entries
	Stock      int64  // resulting stock for product-scoped entries
}

// Recorder appends entries. Entries are never updated or removed.
type Recorder interface {
	Append(ctx context.Context, e Entry) error
}

// Reader exposes the recorded trail.
type Reader interface {
	All(ctx context.Context) ([]Entry, error)
	ByProduct(ctx context.Context, productID uint64) ([]Entry, error)
}
