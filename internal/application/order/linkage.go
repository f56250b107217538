// Package order es el adaptador mínimo hacia pedidos: leer una línea y registrar entregas.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// TxRunner ejecuta la actualización de entrega en su propia transacción.
type TxRunner interface {
	RunDelivery(ctx context.Context, fn func(lineRepo repository.OrderLineItemRepository) error) error
}

// LinkageUseCase implementa la vinculación producción -> línea de pedido.
type LinkageUseCase struct {
	txRunner TxRunner
	repo     repository.OrderLineItemRepository
	now      func() time.Time
}

// NewLinkageUseCase construye el adaptador.
func NewLinkageUseCase(txRunner TxRunner, repo repository.OrderLineItemRepository) *LinkageUseCase {
	return &LinkageUseCase{txRunner: txRunner, repo: repo, now: time.Now}
}

// GetOrderLineItem obtiene la línea si pertenece a la empresa.
func (uc *LinkageUseCase) GetOrderLineItem(ctx context.Context, companyID, id string) (*entity.OrderLineItem, error) {
	line, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if line == nil || line.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return line, nil
}

// UpdateDelivery suma deliveredQty a la línea (fila bloqueada) y recalcula su estado
// con deliveredQty >= cubicMeters.
func (uc *LinkageUseCase) UpdateDelivery(ctx context.Context, companyID, lineItemID string, deliveredQty decimal.Decimal) (*entity.OrderLineItem, error) {
	if lineItemID == "" || !deliveredQty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.OrderLineItem
	err := uc.txRunner.RunDelivery(ctx, func(lineRepo repository.OrderLineItemRepository) error {
		line, err := lineRepo.GetForUpdate(ctx, lineItemID)
		if err != nil {
			return err
		}
		if line == nil || line.CompanyID != companyID {
			return domain.ErrNotFound
		}
		line.ApplyDelivery(deliveredQty, uc.now())
		if err := lineRepo.UpdateDelivery(ctx, line); err != nil {
			return err
		}
		out = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
