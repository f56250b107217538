package production

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// TxRunner ejecuta la unidad atómica de una producción: bloqueo de filas, recálculo,
// control de suficiencia, descuentos y registro. Commit si fn devuelve nil, Rollback si no.
// Un conflicto de bloqueo o serialización debe devolverse como domain.ErrConcurrencyConflict.
type TxRunner interface {
	RunProduction(ctx context.Context, fn func(
		recipeRepo repository.RecipeRepository,
		locRepo repository.StorageLocationRepository,
		itemRepo repository.InventoryItemRepository,
		runRepo repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// OrderLinker es el adaptador hacia líneas de pedido (lo implementa *order.LinkageUseCase).
type OrderLinker interface {
	GetOrderLineItem(ctx context.Context, companyID, id string) (*entity.OrderLineItem, error)
	UpdateDelivery(ctx context.Context, companyID, lineItemID string, deliveredQty decimal.Decimal) (*entity.OrderLineItem, error)
}

// ReceiptGenerator genera el comprobante imprimible de una producción.
type ReceiptGenerator interface {
	GenerateRunReceipt(ctx context.Context, run *entity.ProductionRun, recipe *entity.Recipe, silo *entity.StorageLocation) ([]byte, error)
}

// LedgerExporter exporta el libro de producciones (hoja de cálculo).
type LedgerExporter interface {
	ExportRuns(ctx context.Context, runs []*entity.ProductionRun, productCodes map[string]string) ([]byte, error)
}
