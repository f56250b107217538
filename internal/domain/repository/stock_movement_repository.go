package repository

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos de existencias.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error)
}
