package ports

import (
	"context"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// Capacidades que verifica la aplicación.
const (
	CapProductionLog    = "production.log"
	CapProductionView   = "production.view"
	CapRecipeManage     = "recipe.manage"
	CapInventoryManage  = "inventory.manage"
	CapInventoryStockIn = "inventory.stock_in"
	CapInventoryView    = "inventory.view"
)

// Authorizer decide si un actor tiene una capacidad. Es opaco para los casos de uso:
// no conocen sesiones ni la fuente de los permisos.
type Authorizer interface {
	Authorize(ctx context.Context, actor entity.Actor, capability string) bool
}
