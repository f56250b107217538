package repository

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// ProductionRunRepository es de solo inserción: las producciones y sus descuentos no se editan.
type ProductionRunRepository interface {
	// Create inserta la producción y todas sus Deductions.
	Create(ctx context.Context, run *entity.ProductionRun) error
	GetByID(ctx context.Context, id string) (*entity.ProductionRun, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.ProductionRun, error)
	CountByRecipe(ctx context.Context, recipeID string) (int, error)
}
