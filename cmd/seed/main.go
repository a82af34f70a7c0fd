// Package main provides a CLI tool for seeding the database with sample data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"enoria/internal/core/id"
	"enoria/internal/core/types"
	"enoria/internal/domain/catalogs/product"
	"enoria/internal/domain/catalogs/warehouse"
	"enoria/internal/domain/ledger"
	"enoria/internal/infrastructure/storage/postgres"
	"enoria/internal/infrastructure/storage/postgres/catalog_repo"
	"enoria/internal/infrastructure/storage/postgres/ledger_repo"
	"enoria/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	productRepo := catalog_repo.NewProductRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)

	ledgerService := ledger.NewService(movementRepo, productRepo, warehouseRepo, txManager, nil)

	parishID := id.New()
	log.Infow("seeding sample parish", "parish_id", parishID)

	warehouses, err := seedWarehouses(ctx, warehouseRepo, parishID)
	if err != nil {
		log.Fatalw("failed to seed warehouses", "error", err)
	}

	products, err := seedProducts(ctx, productRepo)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if err := seedOpeningStock(ctx, ledgerService, parishID, warehouses, products); err != nil {
		log.Fatalw("failed to seed opening stock", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedWarehouses(ctx context.Context, repo warehouse.Repository, parishID id.ID) ([]*warehouse.Warehouse, error) {
	specs := []struct {
		code, name string
	}{
		{"PANGAR", "Pangar (church shop)"},
		{"DEPOT", "Candle depot"},
	}

	warehouses := make([]*warehouse.Warehouse, 0, len(specs))
	for _, spec := range specs {
		w := warehouse.New(spec.code, spec.name, parishID)
		if err := repo.Create(ctx, w); err != nil {
			return nil, fmt.Errorf("create warehouse %s: %w", spec.code, err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, nil
}

func seedProducts(ctx context.Context, repo product.Repository) ([]*product.Product, error) {
	specs := []struct {
		code, name, unit string
		tracksStock      bool
		price            string
	}{
		{"CANDLE-S", "Candle, small", "buc", true, "1.50"},
		{"CANDLE-L", "Candle, large", "buc", true, "5.00"},
		{"INCENSE", "Incense", "kg", true, "120.00"},
		{"CALENDAR", "Parish calendar", "buc", true, "15.00"},
		{"SRV-MEMORIAL", "Memorial service", "buc", false, "50.00"},
	}

	products := make([]*product.Product, 0, len(specs))
	for _, spec := range specs {
		p := product.New(spec.code, spec.name, spec.unit, spec.tracksStock)
		price := types.MustMoney(spec.price)
		p.DefaultPrice = &price
		if err := repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", spec.code, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func seedOpeningStock(
	ctx context.Context,
	svc *ledger.Service,
	parishID id.ID,
	warehouses []*warehouse.Warehouse,
	products []*product.Product,
) error {
	now := time.Now()
	docType := "opening-balance"

	quantities := map[string]float64{
		"CANDLE-S": 500,
		"CANDLE-L": 120,
		"INCENSE":  2.5,
		"CALENDAR": 50,
	}

	depot := warehouses[1]
	for _, p := range products {
		qty, ok := quantities[p.Code]
		if !ok {
			continue
		}

		_, err := svc.CreateMovement(ctx, ledger.CreateMovementInput{
			WarehouseID:  depot.ID,
			ProductID:    p.ID,
			ParishID:     parishID,
			Kind:         ledger.KindIn,
			Date:         now,
			Quantity:     types.NewQuantityFromFloat64(qty),
			UnitCost:     p.DefaultPrice,
			DocumentType: &docType,
		})
		if err != nil {
			return fmt.Errorf("opening stock for %s: %w", p.Code, err)
		}
	}

	// Move part of the candle stock to the shop so both warehouses have
	// something on hand.
	_, _, err := svc.CreateTransfer(ctx, ledger.TransferInput{
		SourceWarehouseID: depot.ID,
		DestWarehouseID:   warehouses[0].ID,
		ProductID:         products[0].ID,
		ParishID:          parishID,
		Date:              now,
		Quantity:          types.NewQuantityFromFloat64(100),
		UnitCost:          products[0].DefaultPrice,
	})
	if err != nil {
		return fmt.Errorf("transfer to shop: %w", err)
	}

	return nil
}
