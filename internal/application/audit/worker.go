package audit

import (
	"context"

	dombatch "github.com/eccennah/AuditStock/internal/domain/batch"
	domledger "github.com/eccennah/AuditStock/internal/domain/ledger"
	domorder "github.com/eccennah/AuditStock/internal/domain/order"
	domoutbox "github.com/eccennah/AuditStock/internal/domain/outbox"
	domproduct "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/observability"
)

const workerService = "audit_worker"

// Worker subscribes to every domain event and appends the corresponding
// immutable ledger entry. The settlement core never waits on it; the ledger
// is a pure side channel.
type Worker struct {
	subscriber domoutbox.Subscriber
	recorder   domledger.Recorder

	log          observability.Logger
	entryCounter observability.Counter
}

func New(subscriber domoutbox.Subscriber, recorder domledger.Recorder, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber:   subscriber,
		recorder:     recorder,
		log:          tel.Logger().With(observability.F("service", workerService)),
		entryCounter: tel.Metrics().Counter(observability.MLedgerEntries),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.recorder == nil {
		return
	}
	for _, name := range []string{
		domproduct.RegisteredEvent{}.EventName(),
		domproduct.RestockedEvent{}.EventName(),
		domorder.CreatedEvent{}.EventName(),
		domorder.FinalizedEvent{}.EventName(),
		dombatch.CreatedEvent{}.EventName(),
		dombatch.FinalizedEvent{}.EventName(),
	} {
		w.subscriber.Subscribe(name, w.handle)
	}
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	entry, ok := w.toEntry(e)
	if !ok {
		w.log.Debug("event_ignored", observability.F("event", e.EventName()))
		return nil
	}

	if err := w.recorder.Append(ctx, entry); err != nil {
		w.log.Error("ledger_append_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
		return err
	}

	w.entryCounter.Add(1, observability.L("kind", string(entry.Kind)))
	w.log.Info("ledger_entry_recorded",
		observability.F("kind", entry.Kind),
		observability.F("actor", entry.Actor),
		observability.F("product_id", entry.ProductID),
		observability.F("stock_delta", entry.StockDelta),
	)
	return nil
}

func (w *Worker) toEntry(e domoutbox.Event) (domledger.Entry, bool) {
	switch evt := e.(type) {
	case domproduct.RegisteredEvent:
		return domledger.Entry{
			Kind:       domledger.KindProductRegistered,
			Actor:      evt.Actor,
			ProductID:  evt.ProductID,
			StockDelta: evt.Stock,
			Stock:      evt.Stock,
		}, true
	case domproduct.RestockedEvent:
		return domledger.Entry{
			Kind:       domledger.KindProductRestocked,
			Actor:      evt.Actor,
			ProductID:  evt.ProductID,
			StockDelta: evt.Quantity,
			Stock:      evt.NewStock,
		}, true
	case domorder.CreatedEvent:
		return domledger.Entry{
			Kind:      domledger.KindOrderCreated,
			Actor:     evt.Actor,
			ProductID: evt.ProductID,
			EntityID:  evt.OrderID,
		}, true
	case domorder.FinalizedEvent:
		return domledger.Entry{
			Kind:       domledger.KindOrderFinalized,
			Actor:      evt.Actor,
			ProductID:  evt.ProductID,
			EntityID:   evt.OrderID,
			StockDelta: -evt.Quantity,
			Stock:      evt.RemainingStock,
		}, true
	case dombatch.CreatedEvent:
		return domledger.Entry{
			Kind:     domledger.KindBatchCreated,
			Actor:    evt.Actor,
			EntityID: evt.BatchID,
		}, true
	case dombatch.FinalizedEvent:
		return domledger.Entry{
			Kind:     domledger.KindBatchFinalized,
			Actor:    evt.Actor,
			EntityID: evt.BatchID,
		}, true
	}
	return domledger.Entry{}, false
}
