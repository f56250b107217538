package repository

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// OrderLineItemRepository expone lo mínimo del módulo de pedidos que necesita producción.
type OrderLineItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.OrderLineItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.OrderLineItem, error)
	UpdateDelivery(ctx context.Context, line *entity.OrderLineItem) error
}
