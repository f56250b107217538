package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/application/recipe"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductionUC   *production.UseCase
	RecipeUC       *recipe.UseCase
	ItemUC         *inventory.ItemUseCase
	StockInUC      *inventory.StockInUseCase
	LocationUC     *inventory.LocationUseCase
	Receipts       production.ReceiptGenerator // opcional
	Exporter       production.LedgerExporter   // opcional
	MetricsHandler http.Handler                // opcional: /metrics
	ServiceName    string
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas: token válido con uno de los roles conocidos.
	// El permiso fino por operación lo decide el Authorizer de cada caso de uso.
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleOperador, entity.RoleBodeguero, entity.RoleVendedor),
	)

	// Producción
	prod := protected.Group("/production")
	productionHandler := NewProductionHandler(deps.ProductionUC, deps.Receipts, deps.Exporter)
	prod.Post("/preview", productionHandler.Preview)
	prod.Post("/runs", productionHandler.Execute)
	prod.Get("/runs", productionHandler.List)
	prod.Get("/runs/export", productionHandler.Export) // antes de /runs/:id
	prod.Get("/runs/:id", productionHandler.GetByID)
	prod.Get("/runs/:id/receipt", productionHandler.Receipt)

	// Recetas
	recipes := protected.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.RecipeUC)
	recipes.Post("/", recipeHandler.Create)
	recipes.Get("/", recipeHandler.List)
	recipes.Get("/:id", recipeHandler.GetByID)
	recipes.Put("/:id", recipeHandler.Revise)

	// Inventario
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.ItemUC, deps.StockInUC)
	inv.Post("/items", inventoryHandler.CreateItem)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Get("/items/:id", inventoryHandler.GetItem)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Post("/stock-in", inventoryHandler.StockIn)

	// Ubicaciones y silos
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id/cement-item", locationHandler.BindCementItem)
}
