package inventory

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para las entradas de material y la asignación de silos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
	) error) error
	RunLocation(ctx context.Context, fn func(
		locRepo repository.StorageLocationRepository,
		itemRepo repository.InventoryItemRepository,
	) error) error
}
