package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia para ítems de inventario.
// Los métodos de escritura de cantidad solo los usa el StockLedger.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetByName busca por nombre (sin mayúsculas ni espacios extremos) dentro de la empresa.
	GetByName(ctx context.Context, companyID, name string) (*entity.InventoryItem, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.InventoryItem, error)
	ListBelowThreshold(ctx context.Context, companyID string) ([]*entity.InventoryItem, error)
	// LockForUpdate bloquea las filas (SELECT FOR UPDATE) en orden ascendente de ID.
	LockForUpdate(ctx context.Context, ids []string) ([]*entity.InventoryItem, error)
	// ApplyDelta suma delta a la cantidad solo si el resultado no queda negativo y
	// actualiza costo y valor total. Devuelve el ítem resultante o
	// domain.ErrConcurrencyConflict si la guarda no se cumplió.
	ApplyDelta(ctx context.Context, id string, delta, unitCost decimal.Decimal) (*entity.InventoryItem, error)
	UpdateLocation(ctx context.Context, id string, locationID *string) error
}
