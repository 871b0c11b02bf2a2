package memory

import (
	"context"
	"sync"

	domain "github.com/eccennah/AuditStock/internal/domain/ledger"
)

// Ledger is an append-only in-memory audit trail. Entries get a strictly
// increasing sequence number on append and are never rewritten.
type Ledger struct {
	mu      sync.RWMutex
	entries []domain.Entry
	nextSeq uint64
}

func NewLedger() *Ledger {
	return &Ledger{nextSeq: 1}
}

func (l *Ledger) Append(ctx context.Context, e domain.Entry) error {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	e.Seq = l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, e)
	return nil
}

func (l *Ledger) All(ctx context.Context) ([]domain.Entry, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

func (l *Ledger) ByProduct(ctx context.Context, productID uint64) ([]domain.Entry, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Entry
	for _, e := range l.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}
