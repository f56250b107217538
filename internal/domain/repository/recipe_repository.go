package repository

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para el catálogo de recetas.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	// GetForUpdate bloquea la versión para revisarla (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Recipe, error)
	// GetForShare bloquea la versión en modo compartido mientras una producción la usa.
	GetForShare(ctx context.Context, id string) (*entity.Recipe, error)
	GetLatestByCode(ctx context.Context, companyID, productCode string) (*entity.Recipe, error)
	ListLatest(ctx context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error)
	// Update reemplaza nombre e ingredientes de una versión sin producciones.
	Update(ctx context.Context, recipe *entity.Recipe) error
	// MarkSuperseded deja la versión con IsLatest=false.
	MarkSuperseded(ctx context.Context, id string) error
}
