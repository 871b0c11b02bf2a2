package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appAudit "github.com/eccennah/AuditStock/internal/application/audit"
	appBatch "github.com/eccennah/AuditStock/internal/application/batch"
	appCatalog "github.com/eccennah/AuditStock/internal/application/catalog"
	appOrder "github.com/eccennah/AuditStock/internal/application/order"
	"github.com/eccennah/AuditStock/internal/config"
	"github.com/eccennah/AuditStock/internal/domain/auth"
	"github.com/eccennah/AuditStock/internal/infrastructure/clock"
	"github.com/eccennah/AuditStock/internal/infrastructure/id"
	"github.com/eccennah/AuditStock/internal/infrastructure/memory"
	infraobs "github.com/eccennah/AuditStock/internal/infrastructure/observability"
	"github.com/eccennah/AuditStock/internal/infrastructure/observability/oteltrace"
	"github.com/eccennah/AuditStock/internal/infrastructure/observability/prometrics"
	"github.com/eccennah/AuditStock/internal/infrastructure/observability/zaplogger"
	"github.com/eccennah/AuditStock/internal/infrastructure/outbox"
	"github.com/eccennah/AuditStock/internal/infrastructure/serial"
	"github.com/eccennah/AuditStock/internal/observability"
	"github.com/eccennah/AuditStock/internal/pkg/logging"
	httppresentation "github.com/eccennah/AuditStock/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	log := zaplogger.Wrap(baseLogger)

	registry := prometrics.New(cfg.ServiceName, "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MLedgerEntries: registry.Counter(
			string(observability.MLedgerEntries),
			"Total number of audit ledger entries recorded.",
			"kind",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			prometheus.DefBuckets,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "route",
		),
	}
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), log, counters, histograms)

	productRepo := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	batchRepo := memory.NewBatchRepository()
	roleStore := memory.NewRoleStore(auth.Identity(cfg.Owner))
	ledger := memory.NewLedger()

	productIDs := id.NewAllocator(1)
	orderIDs := id.NewAllocator(1)
	batchIDs := id.NewAllocator(1)
	heights := clock.NewLogical()
	gate := serial.NewGate()

	bus := outbox.NewBus(log)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	catalogService := appCatalog.NewService(productRepo, roleStore, productIDs, gate, bus, tel)
	orderService := appOrder.NewService(orderRepo, productRepo, roleStore, orderIDs, heights, gate, bus, tel)
	batchService := appBatch.NewService(batchRepo, productRepo, roleStore, batchIDs, heights, gate, bus, tel)

	auditWorker := appAudit.New(bus, ledger, tel)
	auditWorker.Start()

	handler := httppresentation.NewHandler(catalogService, orderService, batchService, ledger, log, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("owner", cfg.Owner),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
