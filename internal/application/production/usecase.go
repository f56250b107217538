package production

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	appinv "github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	domprod "github.com/jhoicas/Concreto-api/internal/domain/production"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// Config parámetros del motor de producción.
type Config struct {
	MaxConflictRetries int           // reintentos ante ErrConcurrencyConflict (0 = sin reintentos)
	RetryBackoff       time.Duration // espera base entre reintentos, crece linealmente
	NotifyTimeout      time.Duration
}

// DefaultConfig valores por defecto.
func DefaultConfig() Config {
	return Config{MaxConflictRetries: 3, RetryBackoff: 20 * time.Millisecond, NotifyTimeout: 5 * time.Second}
}

// Deps dependencias del caso de uso. Linker, Notifier y Metrics son opcionales.
type Deps struct {
	TxRunner     TxRunner
	RecipeRepo   repository.RecipeRepository
	LocationRepo repository.StorageLocationRepository
	ItemRepo     repository.InventoryItemRepository
	RunRepo      repository.ProductionRunRepository
	Ledger       *appinv.StockLedger
	Authz        ports.Authorizer
	Linker       OrderLinker
	Notifier     ports.Notifier
	Metrics      ports.ProductionMetrics
	Log          zerolog.Logger
}

// UseCase es el motor de producción: vista previa de requerimientos y ejecución atómica.
type UseCase struct {
	Deps
	cfg Config
	now func() time.Time
}

// NewUseCase construye el motor.
func NewUseCase(deps Deps, cfg Config) *UseCase {
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Ledger == nil {
		deps.Ledger = appinv.NewStockLedger()
	}
	if cfg.MaxConflictRetries < 0 {
		cfg.MaxConflictRetries = 0
	}
	return &UseCase{Deps: deps, cfg: cfg, now: time.Now}
}

// Linkage referencia opcional a cliente/pedido/línea de pedido.
type Linkage struct {
	ClientID        string
	OrderID         string
	OrderLineItemID string
}

// ExecuteInput entrada de ExecuteProductionRun.
type ExecuteInput struct {
	Actor    entity.Actor
	RecipeID string
	SiloID   string
	Volume   decimal.Decimal
	Linkage  *Linkage
}

// ExecuteProductionRun valida, autoriza y ejecuta la producción en una unidad atómica.
// Errores posibles (comparables con errors.Is): ErrInvalidInput, ErrUnauthorized, ErrNotFound,
// ErrInsufficientStock (*domain.InsufficientStockError), ErrConcurrencyConflict, ErrPersistence.
// Ningún error deja efectos: ni producción, ni descuentos, ni cambios de existencia.
func (uc *UseCase) ExecuteProductionRun(ctx context.Context, in ExecuteInput) (*dto.RunSummaryResponse, error) {
	start := uc.now()
	out, err := uc.execute(ctx, in)
	uc.Metrics.ObserveRun(outcomeOf(err), time.Since(start))
	return out, err
}

func (uc *UseCase) execute(ctx context.Context, in ExecuteInput) (*dto.RunSummaryResponse, error) {
	if err := validateExecuteInput(in); err != nil {
		return nil, err
	}
	if !uc.Authz.Authorize(ctx, in.Actor, ports.CapProductionLog) {
		return nil, domain.ErrUnauthorized
	}

	recipe, silo, err := uc.loadRecipeAndSilo(ctx, in.Actor.CompanyID, in.RecipeID, in.SiloID, true)
	if err != nil {
		return nil, err
	}
	if !recipe.IsLatest {
		return nil, domain.ErrRecipeSuperseded
	}
	if recipe.HasCement() && silo.CementItemID == nil {
		return nil, domain.ErrSiloWithoutCement
	}
	if in.Linkage != nil && in.Linkage.OrderLineItemID != "" {
		if uc.Linker == nil {
			return nil, domain.Invalid("order_line_item_id", "vinculación con pedidos no disponible")
		}
		if _, err := uc.Linker.GetOrderLineItem(ctx, in.Actor.CompanyID, in.Linkage.OrderLineItemID); err != nil {
			return nil, err
		}
	}

	var res *commitResult
	for attempt := 0; ; attempt++ {
		res, err = uc.commit(ctx, in)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= uc.cfg.MaxConflictRetries {
			break
		}
		uc.Metrics.IncConflictRetry()
		uc.Log.Warn().
			Str("recipe_id", in.RecipeID).
			Str("silo_id", in.SiloID).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia en producción, reintentando")
		if werr := sleepCtx(ctx, uc.cfg.RetryBackoff*time.Duration(attempt+1)); werr != nil {
			return nil, werr
		}
	}
	if err != nil {
		return nil, classify(err)
	}

	summary := toRunSummary(res.run, res.recipe.ProductCode)
	summary.LowStock = lowStockNames(res.lowStock)
	if in.Linkage != nil {
		summary.Linkage = uc.applyLinkage(ctx, in)
	}
	uc.Log.Info().
		Str("run_id", res.run.ID).
		Str("recipe", res.recipe.ProductCode).
		Str("silo_id", res.run.SiloID).
		Str("volume_m3", res.run.Quantity.String()).
		Str("cement_used", res.run.CementUsed.String()).
		Str("user_id", in.Actor.UserID).
		Msg("producción registrada")
	uc.notify(ctx, res, in.Actor)
	return summary, nil
}

type commitResult struct {
	run      *entity.ProductionRun
	recipe   *entity.Recipe
	lowStock []*entity.InventoryItem
}

// commit es la unidad atómica: todo lo que hace queda confirmado o se revierte completo.
func (uc *UseCase) commit(ctx context.Context, in ExecuteInput) (*commitResult, error) {
	var res *commitResult
	err := uc.TxRunner.RunProduction(ctx, func(
		recipeRepo repository.RecipeRepository,
		locRepo repository.StorageLocationRepository,
		itemRepo repository.InventoryItemRepository,
		runRepo repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		companyID := in.Actor.CompanyID
		// Releer receta y silo dentro de la tx: la receta se bloquea en modo compartido
		// para que no se edite mientras se usa.
		recipe, err := recipeRepo.GetForShare(ctx, in.RecipeID)
		if err != nil {
			return err
		}
		if recipe == nil || recipe.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if !recipe.IsLatest {
			return domain.ErrRecipeSuperseded
		}
		silo, err := locRepo.GetByID(ctx, in.SiloID)
		if err != nil {
			return err
		}
		if silo == nil || silo.CompanyID != companyID {
			return domain.ErrNotFound
		}

		ids := make([]string, 0, len(recipe.Ingredients)+1)
		cementID := ""
		if recipe.HasCement() {
			if silo.CementItemID == nil {
				return domain.ErrSiloWithoutCement
			}
			cementID = *silo.CementItemID
			ids = append(ids, cementID)
		}
		for _, ing := range recipe.Ingredients {
			switch {
			case ing.IsCement():
				// se resuelve contra el silo
			case ing.MaterialID != "":
				ids = append(ids, ing.MaterialID)
			case ing.MaterialName != "":
				legacy, err := itemRepo.GetByName(ctx, companyID, ing.MaterialName)
				if err != nil {
					return err
				}
				if legacy != nil {
					uc.Log.Warn().
						Str("recipe_id", recipe.ID).
						Str("material", ing.MaterialName).
						Str("item_id", legacy.ID).
						Msg("ingrediente resuelto por nombre; vincule material_id en la receta")
					ids = append(ids, legacy.ID)
				}
			}
		}

		locked, err := itemRepo.LockForUpdate(ctx, uniqueSorted(ids))
		if err != nil {
			return err
		}
		for _, it := range locked {
			if it.CompanyID != companyID {
				return domain.ErrNotFound
			}
		}
		snap := domprod.NewSnapshot(locked)
		var siloCement *entity.InventoryItem
		if cementID != "" {
			if siloCement = snap.ItemByID(cementID); siloCement == nil {
				return fmt.Errorf("cemento del silo %s: %w", silo.ID, domain.ErrNotFound)
			}
		}

		reqs := domprod.ComputeRequirements(recipe, in.Volume, snap, siloCement)
		for _, r := range reqs {
			if !r.Resolved {
				return fmt.Errorf("material %q: %w", r.Ingredient, domain.ErrNotFound)
			}
		}
		if err := domprod.CheckSufficiency(reqs); err != nil {
			return err
		}

		now := uc.now()
		run := &entity.ProductionRun{
			ID:            uuid.New().String(),
			CompanyID:     companyID,
			RecipeID:      recipe.ID,
			RecipeVersion: recipe.Version,
			SiloID:        silo.ID,
			Quantity:      in.Volume,
			CementUsed:    domprod.CementUsed(reqs),
			Status:        entity.RunStatusCompleted,
			CreatedBy:     in.Actor.UserID,
			CreatedAt:     now,
		}
		if in.Linkage != nil {
			run.ClientID = optional(in.Linkage.ClientID)
			run.OrderID = optional(in.Linkage.OrderID)
			run.OrderLineItemID = optional(in.Linkage.OrderLineItemID)
		}
		ref := appinv.MovementRef{
			Type:    entity.MovementRefProductionRun,
			ID:      run.ID,
			ActorID: in.Actor.UserID,
			Note:    recipe.ProductCode,
		}
		for _, r := range reqs {
			item := snap.ItemByID(r.InventoryItemID)
			if err := uc.Ledger.Deduct(ctx, itemRepo, movRepo, item, r.Required, ref); err != nil {
				return err
			}
			run.Deductions = append(run.Deductions, entity.Deduction{
				ID:               uuid.New().String(),
				RunID:            run.ID,
				InventoryItemID:  item.ID,
				MaterialName:     r.Ingredient,
				QuantityDeducted: r.Required,
				Unit:             r.Unit,
				UnitCost:         item.UnitCost,
				IsCement:         r.IsCement,
			})
		}
		if err := runRepo.Create(ctx, run); err != nil {
			return err
		}

		var low []*entity.InventoryItem
		for _, it := range locked {
			if it.BelowThreshold() {
				c := *it
				low = append(low, &c)
			}
		}
		res = &commitResult{run: run, recipe: recipe, lowStock: low}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyLinkage actualiza la línea de pedido después del commit. Un error aquí no revierte
// la producción: se registra y se informa en el eco de la vinculación.
func (uc *UseCase) applyLinkage(ctx context.Context, in ExecuteInput) *dto.LinkageDTO {
	echo := &dto.LinkageDTO{
		ClientID:        in.Linkage.ClientID,
		OrderID:         in.Linkage.OrderID,
		OrderLineItemID: in.Linkage.OrderLineItemID,
	}
	if in.Linkage.OrderLineItemID == "" || uc.Linker == nil {
		return echo
	}
	line, err := uc.Linker.UpdateDelivery(ctx, in.Actor.CompanyID, in.Linkage.OrderLineItemID, in.Volume)
	if err != nil {
		uc.Log.Error().Err(err).
			Str("order_line_item_id", in.Linkage.OrderLineItemID).
			Msg("no se pudo actualizar la entrega del pedido")
		echo.Error = err.Error()
		return echo
	}
	echo.Applied = true
	echo.DeliveredQty = line.DeliveredQty
	echo.Status = line.Status
	return echo
}

// notify publica el evento sin bloquear la respuesta; su falla solo se registra.
func (uc *UseCase) notify(ctx context.Context, res *commitResult, actor entity.Actor) {
	if uc.Notifier == nil {
		return
	}
	event := ports.ProductionEvent{
		CompanyID:   res.run.CompanyID,
		RunID:       res.run.ID,
		ProductCode: res.recipe.ProductCode,
		Volume:      res.run.Quantity,
		CreatedBy:   actor.UserID,
	}
	for _, it := range res.lowStock {
		event.LowStock = append(event.LowStock, ports.LowStockItem{
			InventoryItemID: it.ID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			MinThreshold:    it.MinThreshold,
			Unit:            it.Unit,
		})
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.NotifyTimeout)
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				uc.Log.Error().Interface("panic", r).Str("run_id", event.RunID).Msg("notificación de producción")
			}
		}()
		if err := uc.Notifier.NotifyProductionRun(nctx, event); err != nil {
			uc.Log.Warn().Err(err).Str("run_id", event.RunID).Msg("notificación de producción falló")
		}
	}()
}

// loadRecipeAndSilo carga y valida pertenencia a la empresa. siloRequired=false permite siloID vacío.
func (uc *UseCase) loadRecipeAndSilo(ctx context.Context, companyID, recipeID, siloID string, siloRequired bool) (*entity.Recipe, *entity.StorageLocation, error) {
	recipe, err := uc.RecipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	if recipe == nil || recipe.CompanyID != companyID {
		return nil, nil, fmt.Errorf("receta: %w", domain.ErrNotFound)
	}
	if siloID == "" && !siloRequired {
		return recipe, nil, nil
	}
	silo, err := uc.LocationRepo.GetByID(ctx, siloID)
	if err != nil {
		return nil, nil, err
	}
	if silo == nil || silo.CompanyID != companyID {
		return nil, nil, fmt.Errorf("silo: %w", domain.ErrNotFound)
	}
	if !silo.HoldsCement() {
		return nil, nil, domain.Invalid("silo_id", "la ubicación no es un silo ni contenedor")
	}
	return recipe, silo, nil
}

func validateExecuteInput(in ExecuteInput) error {
	if in.RecipeID == "" {
		return domain.Invalid("recipe_id", "es requerido")
	}
	if in.SiloID == "" {
		return domain.Invalid("silo_id", "es requerido")
	}
	if !in.Volume.GreaterThan(decimal.Zero) {
		return domain.Invalid("volume", "debe ser un número positivo")
	}
	if !entity.WithinScale(in.Volume) {
		return domain.Invalid("volume", fmt.Sprintf("admite hasta %d decimales", entity.QuantityScale))
	}
	return nil
}

// classify deja pasar los errores de negocio y envuelve el resto como ErrPersistence.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConcurrencyConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeCompleted
	case errors.Is(err, domain.ErrInsufficientStock):
		return ports.OutcomeInsufficient
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return ports.OutcomeConflict
	case errors.Is(err, domain.ErrPersistence):
		return ports.OutcomeError
	}
	return ports.OutcomeRejected
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func lowStockNames(items []*entity.InventoryItem) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
