package catalog

import (
	"context"
	"time"

	"github.com/eccennah/AuditStock/internal/application"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	domoutbox "github.com/eccennah/AuditStock/internal/domain/outbox"
	domain "github.com/eccennah/AuditStock/internal/domain/product"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/eccennah/AuditStock/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	catalogService  = "catalog-service"
	useCaseRegister = "catalog.register"
	useCaseRestock  = "catalog.restock"
	spanPrefix      = "UC."
)

// Service is the product registry: it owns the authoritative stock and price
// fields and is the only component that creates product records.
type Service struct {
	products  domain.Repository
	roles     auth.RoleStore
	ids       application.IDAllocator
	gate      application.Gate
	publisher domoutbox.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewService(
	products domain.Repository,
	roles auth.RoleStore,
	ids application.IDAllocator,
	gate application.Gate,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		products:     products,
		roles:        roles,
		ids:          ids,
		gate:         gate,
		publisher:    publisher,
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", catalogService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
	}
}

// Register adds a product to the catalog and returns its id. Admin only.
// Initial stock may be zero.
func (s *Service) Register(ctx context.Context, actor auth.Identity, name string, price, stock int64) (_ uint64, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseRegister))

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"RegisterProduct",
		attribute.String("use_case", useCaseRegister),
		attribute.String("actor", string(actor)),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		lat := time.Since(start).Seconds()
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseRegister),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat, observability.L("use_case", useCaseRegister))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	var entity *domain.Product
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleAdmin) {
			return auth.ErrNotAuthorized
		}
		p, derr := domain.New(name, price, stock)
		if derr != nil {
			return derr
		}
		p.ID = s.ids.Next()
		if ierr := s.products.Insert(ctx, p); ierr != nil {
			return ierr
		}
		entity = p
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("product.id", int64(entity.ID)))
	s.publish(ctx, domain.NewRegisteredEvent(entity, actor))
	return entity.ID, nil
}

// Restock increases a product's stock and returns the new value. Admin only.
func (s *Service) Restock(ctx context.Context, actor auth.Identity, productID uint64, quantity int64) (_ int64, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseRestock),
		observability.F("product_id", productID),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			outcome = "error"
		}
		s.reqCounter.Add(1,
			observability.L("use_case", useCaseRestock),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseRestock),
		)
		if err != nil {
			logger.Info("use_case_done", observability.F("outcome", outcome), observability.F("error", err.Error()))
		} else {
			logger.Info("use_case_done", observability.F("outcome", outcome))
		}
	}()

	var entity *domain.Product
	err = s.gate.Do(func() error {
		if !s.roles.HasRole(ctx, actor, auth.RoleAdmin) {
			return auth.ErrNotAuthorized
		}
		p, ferr := s.products.FindByID(ctx, productID)
		if ferr != nil {
			return ferr
		}
		if rerr := p.Restock(quantity); rerr != nil {
			return rerr
		}
		if uerr := s.products.Update(ctx, p); uerr != nil {
			return uerr
		}
		entity = p
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, domain.NewRestockedEvent(entity, quantity, actor))
	return entity.Stock, nil
}

// Get is a pure lookup; no authorization is required.
func (s *Service) Get(ctx context.Context, productID uint64) (*domain.Product, error) {
	return s.products.FindByID(ctx, productID)
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
