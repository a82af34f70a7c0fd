// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/inventory"
	"enoria/internal/domain/invoices"
	"enoria/internal/domain/ledger"
	"enoria/internal/infrastructure/http/v1/handlers"
	"enoria/internal/infrastructure/http/v1/middleware"
	"enoria/internal/infrastructure/storage/postgres"
	"enoria/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	LedgerService    *ledger.Service
	InventoryService *inventory.Service
	InvoiceProjector *invoices.Projector
	ProductService   *product.Service
	WarehouseService *warehouse.Service

	// Development switches Gin to debug mode with verbose routing output.
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters: recovery outermost, then trace and
	// actor so the logger and handlers see the request context).
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	v1 := router.Group("/api/v1")
	{
		ledgerHandler := handlers.NewLedgerHandler(base, cfg.LedgerService)
		ledgerHandler.RegisterRoutes(v1.Group("/ledger"))

		inventoryHandler := handlers.NewInventoryHandler(base, cfg.InventoryService)
		inventoryHandler.RegisterRoutes(v1.Group("/inventory"))

		invoiceHandler := handlers.NewInvoiceHandler(base, cfg.InvoiceProjector)
		invoiceHandler.RegisterRoutes(v1.Group("/invoices"))

		productHandler := handlers.NewProductHandler(base, cfg.ProductService)
		productHandler.RegisterRoutes(v1.Group("/products"))

		warehouseHandler := handlers.NewWarehouseHandler(base, cfg.WarehouseService)
		warehouseHandler.RegisterRoutes(v1.Group("/warehouses"))
	}

	return router
}
