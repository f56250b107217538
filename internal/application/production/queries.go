package production

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	domprod "github.com/jhoicas/Concreto-api/internal/domain/production"
)

// PreviewRequirements calcula los requerimientos sin bloquear ni escribir (no vinculante).
// Con volume <= 0 devuelve una vista previa vacía. siloID es opcional.
func (uc *UseCase) PreviewRequirements(ctx context.Context, actor entity.Actor, recipeID string, volume decimal.Decimal, siloID string) (*dto.PreviewResponse, error) {
	if recipeID == "" {
		return nil, domain.Invalid("recipe_id", "es requerido")
	}
	if !uc.Authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, domain.ErrUnauthorized
	}
	out := &dto.PreviewResponse{RecipeID: recipeID, Volume: volume, SiloID: siloID}
	if !volume.GreaterThan(decimal.Zero) {
		return out, nil
	}

	recipe, silo, err := uc.loadRecipeAndSilo(ctx, actor.CompanyID, recipeID, siloID, false)
	if err != nil {
		return nil, err
	}
	items, err := uc.loadIngredientItems(ctx, actor.CompanyID, recipe, silo)
	if err != nil {
		return nil, err
	}
	snap := domprod.NewSnapshot(items)
	var siloCement *entity.InventoryItem
	if silo != nil && silo.CementItemID != nil {
		siloCement = snap.ItemByID(*silo.CementItemID)
	}

	reqs := domprod.ComputeRequirements(recipe, volume, snap, siloCement)
	out.AllSufficient = domprod.CheckSufficiency(reqs) == nil
	out.Requirements = make([]dto.RequirementDTO, 0, len(reqs))
	for _, r := range reqs {
		if r.ResolvedByName {
			uc.Log.Warn().Str("recipe_id", recipe.ID).Str("material", r.Ingredient).
				Msg("ingrediente resuelto por nombre; vincule material_id en la receta")
		}
		out.Requirements = append(out.Requirements, dto.RequirementDTO{
			Ingredient:      r.Ingredient,
			InventoryItemID: r.InventoryItemID,
			Unit:            r.Unit,
			IsCement:        r.IsCement,
			Required:        r.Required,
			Available:       r.Available,
			Shortfall:       r.Shortfall,
			IsSufficient:    r.IsSufficient,
			ResolvedByName:  r.ResolvedByName,
			UnitMismatch:    r.UnitMismatch,
		})
	}
	return out, nil
}

// loadIngredientItems carga en paralelo los ítems que la receta puede necesitar (sin bloqueo).
func (uc *UseCase) loadIngredientItems(ctx context.Context, companyID string, recipe *entity.Recipe, silo *entity.StorageLocation) ([]*entity.InventoryItem, error) {
	type lookup struct{ id, name string }
	var lookups []lookup
	if silo != nil && silo.CementItemID != nil {
		lookups = append(lookups, lookup{id: *silo.CementItemID})
	}
	for _, ing := range recipe.Ingredients {
		switch {
		case ing.MaterialID != "":
			lookups = append(lookups, lookup{id: ing.MaterialID})
		case ing.MaterialName != "":
			lookups = append(lookups, lookup{name: ing.MaterialName})
		}
	}

	found := make([]*entity.InventoryItem, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lookups {
		g.Go(func() error {
			var (
				it  *entity.InventoryItem
				err error
			)
			if l.id != "" {
				it, err = uc.ItemRepo.GetByID(gctx, l.id)
			} else {
				it, err = uc.ItemRepo.GetByName(gctx, companyID, l.name)
			}
			if err != nil {
				return fmt.Errorf("cargar material: %w", err)
			}
			if it != nil && it.CompanyID == companyID {
				found[i] = it
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]*entity.InventoryItem, 0, len(found))
	for _, it := range found {
		if it != nil {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetRun devuelve una producción con sus descuentos.
func (uc *UseCase) GetRun(ctx context.Context, actor entity.Actor, runID string) (*dto.RunSummaryResponse, error) {
	run, recipe, err := uc.loadRun(ctx, actor, runID)
	if err != nil {
		return nil, err
	}
	return toRunSummary(run, recipe.ProductCode), nil
}

// ListRuns lista producciones de la empresa, más recientes primero.
func (uc *UseCase) ListRuns(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.RunListResponse, error) {
	if !uc.Authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, domain.ErrUnauthorized
	}
	page.DefaultPage()
	runs, err := uc.RunRepo.ListByCompany(ctx, actor.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	codes, err := uc.productCodes(ctx, runs)
	if err != nil {
		return nil, err
	}
	out := &dto.RunListResponse{
		Items: make([]dto.RunSummaryResponse, 0, len(runs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, r := range runs {
		out.Items = append(out.Items, *toRunSummary(r, codes[r.RecipeID]))
	}
	return out, nil
}

// RunReceipt genera el comprobante PDF de una producción.
func (uc *UseCase) RunReceipt(ctx context.Context, actor entity.Actor, runID string, gen ReceiptGenerator) ([]byte, error) {
	run, recipe, err := uc.loadRun(ctx, actor, runID)
	if err != nil {
		return nil, err
	}
	silo, err := uc.LocationRepo.GetByID(ctx, run.SiloID)
	if err != nil {
		return nil, err
	}
	return gen.GenerateRunReceipt(ctx, run, recipe, silo)
}

// ExportRuns exporta las producciones de la empresa en una hoja de cálculo.
func (uc *UseCase) ExportRuns(ctx context.Context, actor entity.Actor, limit int, exp LedgerExporter) ([]byte, error) {
	if !uc.Authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, domain.ErrUnauthorized
	}
	if limit <= 0 || limit > 5000 {
		limit = 5000
	}
	runs, err := uc.RunRepo.ListByCompany(ctx, actor.CompanyID, limit, 0)
	if err != nil {
		return nil, err
	}
	codes, err := uc.productCodes(ctx, runs)
	if err != nil {
		return nil, err
	}
	return exp.ExportRuns(ctx, runs, codes)
}

func (uc *UseCase) loadRun(ctx context.Context, actor entity.Actor, runID string) (*entity.ProductionRun, *entity.Recipe, error) {
	if !uc.Authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, nil, domain.ErrUnauthorized
	}
	run, err := uc.RunRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil || run.CompanyID != actor.CompanyID {
		return nil, nil, domain.ErrNotFound
	}
	recipe, err := uc.RecipeRepo.GetByID(ctx, run.RecipeID)
	if err != nil {
		return nil, nil, err
	}
	if recipe == nil {
		return nil, nil, fmt.Errorf("receta de la producción: %w", domain.ErrNotFound)
	}
	return run, recipe, nil
}

func (uc *UseCase) productCodes(ctx context.Context, runs []*entity.ProductionRun) (map[string]string, error) {
	codes := make(map[string]string)
	for _, r := range runs {
		if _, ok := codes[r.RecipeID]; ok {
			continue
		}
		rec, err := uc.RecipeRepo.GetByID(ctx, r.RecipeID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			codes[r.RecipeID] = rec.ProductCode
		} else {
			codes[r.RecipeID] = ""
		}
	}
	return codes, nil
}

func toRunSummary(run *entity.ProductionRun, productCode string) *dto.RunSummaryResponse {
	out := &dto.RunSummaryResponse{
		RunID:         run.ID,
		RecipeID:      run.RecipeID,
		ProductCode:   productCode,
		RecipeVersion: run.RecipeVersion,
		SiloID:        run.SiloID,
		Volume:        run.Quantity,
		CementUsed:    run.CementUsed,
		Status:        run.Status,
		Deductions:    make([]dto.DeductionDTO, 0, len(run.Deductions)),
		CreatedBy:     run.CreatedBy,
		CreatedAt:     run.CreatedAt,
	}
	for _, d := range run.Deductions {
		out.Deductions = append(out.Deductions, dto.DeductionDTO{
			InventoryItemID:  d.InventoryItemID,
			MaterialName:     d.MaterialName,
			QuantityDeducted: d.QuantityDeducted,
			Unit:             d.Unit,
		})
	}
	if run.ClientID != nil || run.OrderID != nil || run.OrderLineItemID != nil {
		out.Linkage = &dto.LinkageDTO{
			ClientID:        deref(run.ClientID),
			OrderID:         deref(run.OrderID),
			OrderLineItemID: deref(run.OrderLineItemID),
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
