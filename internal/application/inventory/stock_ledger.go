package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Concreto-api/internal/domain/inventory"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// MovementRef identifica el origen de un ajuste en el libro de movimientos.
type MovementRef struct {
	Type    string // entity.MovementRefProductionRun | entity.MovementRefStockIn
	ID      string
	ActorID string
	Note    string
}

// StockLedger son las primitivas Deduct/Add: los únicos caminos que cambian
// InventoryItem.Quantity. Se llaman siempre dentro de la transacción del caller y
// con la fila ya bloqueada (LockForUpdate).
type StockLedger struct {
	now func() time.Time
}

// NewStockLedger construye el libro.
func NewStockLedger() *StockLedger {
	return &StockLedger{now: time.Now}
}

// Deduct retira qty del ítem. Verifica quantity - qty >= 0, escribe cantidad y valor total
// (con guarda en el UPDATE) y registra el movimiento OUT. Actualiza *item con el resultado.
func (l *StockLedger) Deduct(
	ctx context.Context,
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	item *entity.InventoryItem,
	qty decimal.Decimal,
	ref MovementRef,
) error {
	if item == nil || !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !domaininv.CanDeduct(item.Quantity, qty) {
		return &domain.InsufficientStockError{
			Ingredient:      item.Name,
			InventoryItemID: item.ID,
			Unit:            item.Unit,
			Required:        qty,
			Available:       item.Quantity,
		}
	}
	updated, err := itemRepo.ApplyDelta(ctx, item.ID, qty.Neg(), item.UnitCost)
	if err != nil {
		return fmt.Errorf("descontar %s: %w", item.ID, err)
	}
	*item = *updated

	return movRepo.Create(ctx, &entity.StockMovement{
		ID:              uuid.New().String(),
		CompanyID:       item.CompanyID,
		InventoryItemID: item.ID,
		Type:            entity.MovementTypeOUT,
		Quantity:        qty.Neg(),
		UnitCost:        item.UnitCost,
		TotalCost:       qty.Neg().Mul(item.UnitCost).Round(entity.QuantityScale),
		BalanceAfter:    item.Quantity,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		Note:            ref.Note,
		CreatedAt:       l.now(),
		CreatedBy:       ref.ActorID,
	})
}

// Add suma qty al ítem con costo unitario unitCost: recalcula el costo promedio ponderado,
// respeta MaxCapacity y registra el movimiento IN. Actualiza *item con el resultado.
func (l *StockLedger) Add(
	ctx context.Context,
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	item *entity.InventoryItem,
	qty, unitCost decimal.Decimal,
	ref MovementRef,
) error {
	if item == nil || !qty.GreaterThan(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !domaininv.FitsCapacity(item.Quantity, qty, item.MaxCapacity) {
		return domain.ErrCapacityExceeded
	}
	newCost := domaininv.CostCalculator(item.Quantity, item.UnitCost, qty, unitCost)
	updated, err := itemRepo.ApplyDelta(ctx, item.ID, qty, newCost)
	if err != nil {
		return fmt.Errorf("sumar %s: %w", item.ID, err)
	}
	*item = *updated

	return movRepo.Create(ctx, &entity.StockMovement{
		ID:              uuid.New().String(),
		CompanyID:       item.CompanyID,
		InventoryItemID: item.ID,
		Type:            entity.MovementTypeIN,
		Quantity:        qty,
		UnitCost:        unitCost,
		TotalCost:       qty.Mul(unitCost).Round(entity.QuantityScale),
		BalanceAfter:    item.Quantity,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		Note:            ref.Note,
		CreatedAt:       l.now(),
		CreatedBy:       ref.ActorID,
	})
}
