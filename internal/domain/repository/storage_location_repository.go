package repository

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// StorageLocationRepository define el puerto de persistencia para bodegas y silos.
type StorageLocationRepository interface {
	Create(ctx context.Context, loc *entity.StorageLocation) error
	GetByID(ctx context.Context, id string) (*entity.StorageLocation, error)
	// GetByCementItem devuelve el silo que tiene asignado el ítem de cemento, o nil.
	GetByCementItem(ctx context.Context, itemID string) (*entity.StorageLocation, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.StorageLocation, error)
	SetCementItem(ctx context.Context, locationID string, itemID *string) error
}
