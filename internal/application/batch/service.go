package batch

import (
	"context"
	"time"

	"github.com/eccennah/AuditStock/internal/application"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	domain "github.com/eccennah/AuditStock/internal/domain/batch"
	domoutbox "github.com/eccennah/AuditStock/internal/domain/outbox"
	domproduct "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/eccennah/AuditStock/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	batchService    = "batch-service"
	useCaseCreate   = "batch.create"
	useCaseFinalize = "batch.finalize"
	spanPrefix      = "UC."
)

// Service is the batch settlement engine: up to MaxItems line items applied
// against the registry with all-or-nothing semantics. A pre-validate phase at
// creation front-loads the error handling; the commit phase re-verifies every
// item on staged copies before anything is written back, so a failed commit
// leaves every product untouched.
type Service struct {
	batches   domain.Repository
	products  domproduct.Repository
	roles     auth.RoleStore
	ids       application.IDAllocator
	heights   application.HeightSource
	gate      application.Gate
	publisher domoutbox.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewService(
	batches domain.Repository,
	products domproduct.Repository,
	roles auth.RoleStore,
	ids application.IDAllocator,
	heights application.HeightSource,
	gate application.Gate,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		batches:      batches,
		products:     products,
		roles:        roles,
		ids:          ids,
		heights:      heights,
		gate:         gate,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", batchService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Create validates every line item and, only if all pass, stores the batch
// header and its items. Cashier only. Nothing is persisted and no batch id
// is consumed when any item fails a check.
func (s *Service) Create(ctx context.Context, actor auth.Identity, items []domain.LineItem) (_ uint64, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseCreate),
		observability.F("item_count", len(items)),
	)

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"CreateBatch",
		attribute.String("use_case", useCaseCreate),
		attribute.Int("batch.item_count", len(items)),
	)
	start := time.Now()
	defer func() {
		s.finish(span, logger, useCaseCreate, start, err)
	}()

	var entity *domain.Batch
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleCashier) {
			return auth.ErrNotAuthorized
		}
		if len(items) == 0 {
			return domain.ErrEmpty
		}
		if len(items) > domain.MaxItems {
			return domain.ErrTooManyItems
		}

		// Phase 1: validate every item without mutating anything. Any
		// failing item fails the whole call as a stock shortage; the
		// commit phase re-verifies because stock may drift in between.
		for _, it := range items {
			p, ferr := s.products.FindByID(ctx, it.ProductID)
			if ferr != nil {
				return domproduct.ErrInsufficientStock
			}
			if it.Quantity <= 0 || p.Stock < it.Quantity {
				return domproduct.ErrInsufficientStock
			}
		}

		b, derr := domain.New(len(items), actor, s.heights.Height())
		if derr != nil {
			return derr
		}
		b.ID = s.ids.Next()

		stored := make([]domain.Item, len(items))
		for i, it := range items {
			stored[i] = domain.Item{BatchID: b.ID, Index: i, LineItem: it}
		}
		if ierr := s.batches.Insert(ctx, b, stored); ierr != nil {
			return ierr
		}
		entity = b
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("batch.id", int64(entity.ID)))
	s.publish(ctx, domain.NewCreatedEvent(entity))
	return entity.ID, nil
}

// Finalize commits a batch: every item's stock is deducted, or none is.
// Cashier only.
func (s *Service) Finalize(ctx context.Context, actor auth.Identity, batchID uint64) (err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseFinalize),
		observability.F("batch_id", batchID),
	)

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"FinalizeBatch",
		attribute.String("use_case", useCaseFinalize),
		attribute.Int64("batch.id", int64(batchID)),
	)
	start := time.Now()
	defer func() {
		s.finish(span, logger, useCaseFinalize, start, err)
	}()

	var entity *domain.Batch
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleCashier) {
			return auth.ErrNotAuthorized
		}
		b, ferr := s.batches.FindByID(ctx, batchID)
		if ferr != nil {
			return ferr
		}
		if b.Finalized {
			return domain.ErrAlreadyFinalized
		}

		staged, cerr := s.stageCommit(ctx, b)
		if cerr != nil {
			return cerr
		}

		if ferr := b.Finalize(); ferr != nil {
			return ferr
		}
		if uerr := s.products.UpdateAll(ctx, staged); uerr != nil {
			return uerr
		}
		if uerr := s.batches.Update(ctx, b); uerr != nil {
			return uerr
		}
		entity = b
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.NewFinalizedEvent(entity, actor))
	return nil
}

// stageCommit walks the item indices in order and applies each deduction to a
// staged copy of the touched product, first failure wins. The walk is bounded
// by the fixed batch capacity; indices past the real item count are never
// reached. Repeated products accumulate on the same staged copy, so a batch
// cannot overdraw by splitting a product across items.
func (s *Service) stageCommit(ctx context.Context, b *domain.Batch) ([]*domproduct.Product, error) {
	byID := make(map[uint64]*domproduct.Product, b.ItemCount)
	staged := make([]*domproduct.Product, 0, b.ItemCount)

	for i := 0; i < domain.MaxItems; i++ {
		if i >= b.ItemCount {
			break
		}
		it, ferr := s.batches.FindItem(ctx, b.ID, i)
		if ferr != nil {
			return nil, ferr
		}
		p, ok := byID[it.ProductID]
		if !ok {
			loaded, perr := s.products.FindByID(ctx, it.ProductID)
			if perr != nil {
				return nil, perr
			}
			p = loaded
			byID[it.ProductID] = p
			staged = append(staged, p)
		}
		if derr := p.Deduct(it.Quantity); derr != nil {
			return nil, derr
		}
	}
	return staged, nil
}

// Get is a pure lookup; no authorization is required.
func (s *Service) Get(ctx context.Context, batchID uint64) (*domain.Batch, error) {
	return s.batches.FindByID(ctx, batchID)
}

// GetItem is a pure lookup of one line item by (batch id, index). A missing
// batch and a missing index are reported as distinct errors.
func (s *Service) GetItem(ctx context.Context, batchID uint64, index int) (*domain.Item, error) {
	b, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= b.ItemCount {
		return nil, domain.ErrItemNotFound
	}
	return s.batches.FindItem(ctx, batchID, index)
}

func (s *Service) finish(span trace.Span, logger observability.Logger, useCase string, start time.Time, err error) {
	lat := time.Since(start).Seconds()
	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()

	s.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	s.durHistogram.Observe(lat, observability.L("use_case", useCase))

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("latency_seconds", lat),
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
	}
}
