package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/application/order"
	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/application/recipe"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner  = (*TxRunner)(nil)
	_ recipe.TxRunner     = (*TxRunner)(nil)
	_ order.TxRunner      = (*TxRunner)(nil)
	_ production.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Con lockTimeout > 0 cada transacción hace SET LOCAL lock_timeout: una espera de bloqueo
// más larga falla con 55P03 y se devuelve como domain.ErrConcurrencyConflict.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// inTx inicia la transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	if err := fn(tx); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapTxError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Run: entradas de material (ítems + movimientos).
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewInventoryItemRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunLocation: asignación de cemento a silos.
func (r *TxRunner) RunLocation(ctx context.Context, fn func(
	locRepo repository.StorageLocationRepository,
	itemRepo repository.InventoryItemRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStorageLocationRepository(tx), NewInventoryItemRepository(tx))
	})
}

// RunCatalog: revisión de recetas.
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	recipeRepo repository.RecipeRepository,
	runRepo repository.ProductionRunRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewRecipeRepository(tx), NewProductionRunRepository(tx))
	})
}

// RunDelivery: entrega sobre línea de pedido.
func (r *TxRunner) RunDelivery(ctx context.Context, fn func(lineRepo repository.OrderLineItemRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewOrderLineItemRepository(tx))
	})
}

// RunProduction: la unidad atómica de una producción.
func (r *TxRunner) RunProduction(ctx context.Context, fn func(
	recipeRepo repository.RecipeRepository,
	locRepo repository.StorageLocationRepository,
	itemRepo repository.InventoryItemRepository,
	runRepo repository.ProductionRunRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(
			NewRecipeRepository(tx),
			NewStorageLocationRepository(tx),
			NewInventoryItemRepository(tx),
			NewProductionRunRepository(tx),
			NewStockMovementRepository(tx),
		)
	})
}
