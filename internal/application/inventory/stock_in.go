package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// StockInUseCase registra entradas de material (compras, recargas de silo) vía StockLedger.Add.
// Se aplica de inmediato; la política de aprobación por rol queda fuera de este servicio.
type StockInUseCase struct {
	txRunner TxRunner
	authz    ports.Authorizer
	ledger   *StockLedger
	log      zerolog.Logger
}

// NewStockInUseCase construye el caso de uso.
func NewStockInUseCase(txRunner TxRunner, authz ports.Authorizer, ledger *StockLedger, log zerolog.Logger) *StockInUseCase {
	return &StockInUseCase{txRunner: txRunner, authz: authz, ledger: ledger, log: log}
}

// StockIn bloquea la fila del ítem, suma la cantidad y guarda el movimiento en una sola transacción.
func (uc *StockInUseCase) StockIn(ctx context.Context, actor entity.Actor, in dto.StockInRequest) (*dto.InventoryItemResponse, error) {
	if in.InventoryItemID == "" {
		return nil, domain.Invalid("inventory_item_id", "es requerido")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	if !entity.WithinScale(in.Quantity) || !entity.WithinScale(in.UnitCost) {
		return nil, domain.Invalid("quantity", fmt.Sprintf("cantidad y costo admiten hasta %d decimales", entity.QuantityScale))
	}
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryStockIn) {
		return nil, domain.ErrUnauthorized
	}

	txID := uuid.New().String()
	var result *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		locked, err := itemRepo.LockForUpdate(ctx, []string{in.InventoryItemID})
		if err != nil {
			return err
		}
		if len(locked) == 0 || locked[0].CompanyID != actor.CompanyID {
			return domain.ErrNotFound
		}
		item := locked[0]
		if err := uc.ledger.Add(ctx, itemRepo, movRepo, item, in.Quantity, in.UnitCost, MovementRef{
			Type:    entity.MovementRefStockIn,
			ID:      txID,
			ActorID: actor.UserID,
			Note:    in.Note,
		}); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("item_id", result.ID).
		Str("qty", in.Quantity.String()).
		Str("balance", result.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("entrada de material registrada")
	return toItemResponse(result), nil
}
