package recipe

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// TxRunner ejecuta la revisión de una receta en una transacción: bloquea la versión,
// consulta si ya se usó y la actualiza o crea la siguiente versión.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		recipeRepo repository.RecipeRepository,
		runRepo repository.ProductionRunRepository,
	) error) error
}
