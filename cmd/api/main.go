package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/furuknap/marketmaster/internal/app"
	"github.com/furuknap/marketmaster/internal/clock"
	"github.com/furuknap/marketmaster/internal/config"
	"github.com/furuknap/marketmaster/internal/storage/postgres"
	transporthttp "github.com/furuknap/marketmaster/internal/transport/http"
	"github.com/furuknap/marketmaster/migrations"
	"github.com/furuknap/marketmaster/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "err", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "err", err)
		os.Exit(1)
	}

	sysClock := clock.NewSystem()
	catalogRepo := postgres.NewCatalogRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	backupRepo := postgres.NewBackupRepository(pool)

	catalogSvc := app.NewCatalogService(catalogRepo, sysClock)
	eventSvc := app.NewEventService(eventRepo, sysClock)
	cartSvc := app.NewCartService(catalogRepo, saleRepo, eventRepo, sysClock)
	reportSvc := app.NewReportService(saleRepo, catalogRepo, eventRepo, sysClock)
	backupSvc := app.NewBackupService(catalogRepo, saleRepo, eventRepo, backupRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	route(mux, "/products", transporthttp.HandleProducts(catalogSvc))
	route(mux, "/products/", transporthttp.HandleProductByID(catalogSvc))
	route(mux, "/discounts", transporthttp.HandleDiscounts(catalogSvc))
	route(mux, "/discounts/", transporthttp.HandleDiscountByID(catalogSvc))
	route(mux, "/cart", transporthttp.HandleCart(cartSvc))
	route(mux, "/cart/", transporthttp.HandleCartOps(cartSvc, reportSvc))
	route(mux, "/sales", transporthttp.HandleSales(reportSvc))
	route(mux, "/reports/today", transporthttp.HandleTodayReport(reportSvc))
	route(mux, "/events/active", transporthttp.HandleActiveEvent(eventSvc))
	route(mux, "/backup", transporthttp.HandleBackup(backupSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
}

func route(mux *http.ServeMux, pattern string, handler http.Handler) {
	mux.Handle(pattern, transporthttp.Metrics(pattern, handler))
}
