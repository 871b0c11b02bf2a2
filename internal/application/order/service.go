package order

import (
	"context"
	"time"

	"github.com/eccennah/AuditStock/internal/application"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	domain "github.com/eccennah/AuditStock/internal/domain/order"
	domoutbox "github.com/eccennah/AuditStock/internal/domain/outbox"
	domproduct "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/eccennah/AuditStock/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService    = "order-service"
	useCaseCreate   = "order.create"
	useCaseFinalize = "order.finalize"
	spanPrefix      = "UC."
)

// Service is the single-order settlement engine. An order is a
// reservation-free placeholder at creation; stock moves only at finalize,
// which re-checks availability because restocks and other finalizes may have
// run in between.
type Service struct {
	orders    domain.Repository
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
	orders domain.Repository,
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
		orders:       orders,
		products:     products,
		roles:        roles,
		ids:          ids,
		heights:      heights,
		gate:         gate,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", orderService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Create records an order placeholder and returns its id. Cashier only.
// Stock is checked but not mutated; availability is re-verified at finalize.
func (s *Service) Create(ctx context.Context, actor auth.Identity, productID uint64, quantity int64) (_ uint64, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseCreate),
		observability.F("product_id", productID),
	)

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseCreate),
		attribute.Int64("order.product_id", int64(productID)),
		attribute.Int64("order.quantity", quantity),
	)
	start := time.Now()
	defer func() {
		s.finish(span, logger, useCaseCreate, start, err)
	}()

	var entity *domain.Order
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleCashier) {
			return auth.ErrNotAuthorized
		}
		p, ferr := s.products.FindByID(ctx, productID)
		if ferr != nil {
			return ferr
		}
		if p.Stock < quantity {
			return domproduct.ErrInsufficientStock
		}
		o, derr := domain.New(productID, quantity, actor, s.heights.Height())
		if derr != nil {
			return derr
		}
		o.ID = s.ids.Next()
		if ierr := s.orders.Insert(ctx, o); ierr != nil {
			return ierr
		}
		entity = o
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("order.id", int64(entity.ID)))
	s.publish(ctx, domain.NewCreatedEvent(entity))
	return entity.ID, nil
}

// Finalize settles an order: stock is re-checked and deducted, and the order
// transitions to finalized, as one state transition. Cashier only.
func (s *Service) Finalize(ctx context.Context, actor auth.Identity, orderID uint64) (err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseFinalize),
		observability.F("order_id", orderID),
	)

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"FinalizeOrder",
		attribute.String("use_case", useCaseFinalize),
		attribute.Int64("order.id", int64(orderID)),
	)
	start := time.Now()
	defer func() {
		s.finish(span, logger, useCaseFinalize, start, err)
	}()

	var (
		entity         *domain.Order
		remainingStock int64
	)
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleCashier) {
			return auth.ErrNotAuthorized
		}
		o, ferr := s.orders.FindByID(ctx, orderID)
		if ferr != nil {
			return ferr
		}
		if o.Finalized {
			return domain.ErrAlreadyFinalized
		}
		p, perr := s.products.FindByID(ctx, o.ProductID)
		if perr != nil {
			return perr
		}
		// Stock may have drifted since creation; this check is mandatory.
		if derr := p.Deduct(o.Quantity); derr != nil {
			return derr
		}
		if ferr := o.Finalize(); ferr != nil {
			return ferr
		}
		if uerr := s.products.Update(ctx, p); uerr != nil {
			return uerr
		}
		if uerr := s.orders.Update(ctx, o); uerr != nil {
			return uerr
		}
		entity = o
		remainingStock = p.Stock
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, domain.NewFinalizedEvent(entity, remainingStock, actor))
	return nil
}

// Get is a pure lookup; no authorization is required.
func (s *Service) Get(ctx context.Context, orderID uint64) (*domain.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// finish closes the span and records RED metrics plus the use-case log line.
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
