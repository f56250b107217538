package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Concreto-api/docs"
	"github.com/jhoicas/Concreto-api/internal/application/auth"
	"github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/application/order"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/application/recipe"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/export"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/memory"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Concreto-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Concreto-api/internal/interfaces/http"
	"github.com/jhoicas/Concreto-api/pkg/config"
	"github.com/jhoicas/Concreto-api/pkg/logger"
)

// txRunner reúne las unidades de trabajo que usan los casos de uso.
type txRunner interface {
	production.TxRunner
	recipe.TxRunner
	inventory.TxRunner
	order.TxRunner
}

// backend repositorios fuera de transacción y el ejecutor transaccional del almacén elegido.
type backend struct {
	tx        txRunner
	items     repository.InventoryItemRepository
	locations repository.StorageLocationRepository
	recipes   repository.RecipeRepository
	runs      repository.ProductionRunRepository
	lines     repository.OrderLineItemRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.App.Store).Msg("inicializar almacén")
	}
	defer be.close()

	authz := auth.NewRolePolicy(nil)
	ledger := inventory.NewStockLedger()

	var prodMetrics ports.ProductionMetrics = ports.NopMetrics{}
	var promMetrics *metrics.Production
	if cfg.App.MetricsEnabled {
		promMetrics = metrics.NewProduction("concreto")
		prodMetrics = promMetrics
	}

	productionUC := production.NewUseCase(production.Deps{
		TxRunner:     be.tx,
		RecipeRepo:   be.recipes,
		LocationRepo: be.locations,
		ItemRepo:     be.items,
		RunRepo:      be.runs,
		Ledger:       ledger,
		Authz:        authz,
		Linker:       order.NewLinkageUseCase(be.tx, be.lines),
		Notifier:     notify.NewLogNotifier(log.Component("notifier")),
		Metrics:      prodMetrics,
		Log:          log.Component("production"),
	}, production.Config{
		MaxConflictRetries: cfg.Production.MaxConflictRetries,
		RetryBackoff:       production.DefaultConfig().RetryBackoff,
		NotifyTimeout:      cfg.Production.NotifyTimeout(),
	})

	deps := httpRouter.RouterDeps{
		ProductionUC: productionUC,
		RecipeUC:     recipe.NewUseCase(be.tx, be.recipes, be.items, authz, log.Component("recipes")),
		ItemUC:       inventory.NewItemUseCase(be.items, authz),
		StockInUC:    inventory.NewStockInUseCase(be.tx, authz, ledger, log.Component("inventory")),
		LocationUC:   inventory.NewLocationUseCase(be.tx, be.locations, authz),
		Receipts:     infrapdf.NewRunReceiptGenerator(cfg.App.PlantName),
		Exporter:     export.NewRunsXLSX(),
		ServiceName:  cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
	}
	if promMetrics != nil {
		deps.MetricsHandler = promMetrics.Handler()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       docs.SwaggerInfo.Title,
	}))

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.Store == config.StoreMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			tx:        store,
			items:     store.Items(),
			locations: store.Locations(),
			recipes:   store.Recipes(),
			runs:      store.Runs(),
			lines:     store.OrderLines(),
			close:     func() {},
		}, nil
	}

	log.Info().Str("dsn", postgres.RedactedDSN(cfg.DB)).Msg("conectando a PostgreSQL")
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool, cfg.Production.LockTimeout()),
		items:     postgres.NewInventoryItemRepository(pool),
		locations: postgres.NewStorageLocationRepository(pool),
		recipes:   postgres.NewRecipeRepository(pool),
		runs:      postgres.NewProductionRunRepository(pool),
		lines:     postgres.NewOrderLineItemRepository(pool),
		close:     pool.Close,
	}, nil
}
