// Package main is the entry point for the enoria stock ledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enoria/internal/config"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/inventory"
	"enoria/internal/domain/invoices"
	"enoria/internal/domain/ledger"
	v1 "enoria/internal/infrastructure/http/v1"
	"enoria/internal/infrastructure/numerator"
	"enoria/internal/infrastructure/storage/postgres"
	"enoria/internal/infrastructure/storage/postgres/catalog_repo"
	"enoria/internal/infrastructure/storage/postgres/document_repo"
	"enoria/internal/infrastructure/storage/postgres/ledger_repo"
	"enoria/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting server", "app", cfg.App.Name, "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	if cfg.DB.MaxConns > 0 {
		poolCfg.MaxConns = cfg.DB.MaxConns
	}
	if cfg.DB.MinConns > 0 {
		poolCfg.MinConns = cfg.DB.MinConns
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	numbers := numerator.New(pool)

	// --- Repositories ---
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	sessionRepo := document_repo.NewSessionRepo(txManager)

	// --- Services ---
	ledgerService := ledger.NewService(movementRepo, productRepo, warehouseRepo, txManager, auditService)
	productService := product.NewService(productRepo)
	warehouseService := warehouse.NewService(warehouseRepo)
	invoiceProjector := invoices.NewProjector(ledgerService, productRepo, txManager, auditService)
	inventoryService := inventory.NewService(
		sessionRepo,
		ledgerService,
		productRepo,
		warehouseRepo,
		numbers,
		txManager,
		auditService,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		LedgerService:    ledgerService,
		InventoryService: inventoryService,
		InvoiceProjector: invoiceProjector,
		ProductService:   productService,
		WarehouseService: warehouseService,
		Development:      !cfg.App.IsProduction(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
