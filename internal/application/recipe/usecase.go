package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// UseCase es el catálogo de recetas (diseños de mezcla) con versionado.
type UseCase struct {
	txRunner TxRunner
	repo     repository.RecipeRepository
	itemRepo repository.InventoryItemRepository
	authz    ports.Authorizer
	log      zerolog.Logger
}

// NewUseCase construye el catálogo.
func NewUseCase(
	txRunner TxRunner,
	repo repository.RecipeRepository,
	itemRepo repository.InventoryItemRepository,
	authz ports.Authorizer,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{txRunner: txRunner, repo: repo, itemRepo: itemRepo, authz: authz, log: log}
}

// Create crea la versión 1 de una receta.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapRecipeManage) {
		return nil, domain.ErrUnauthorized
	}
	code := strings.TrimSpace(in.ProductCode)
	name := strings.TrimSpace(in.Name)
	if code == "" {
		return nil, domain.Invalid("product_code", "es requerido")
	}
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	ingredients, err := uc.buildIngredients(ctx, actor.CompanyID, in.Ingredients)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetLatestByCode(ctx, actor.CompanyID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	r := &entity.Recipe{
		ID:          uuid.New().String(),
		CompanyID:   actor.CompanyID,
		ProductCode: code,
		Name:        name,
		Ingredients: ingredients,
		Version:     1,
		IsLatest:    true,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return ToRecipeResponse(r), nil
}

// GetByID obtiene una versión concreta.
func (uc *UseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.RecipeResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, domain.ErrUnauthorized
	}
	r, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	return ToRecipeResponse(r), nil
}

// List lista las versiones vigentes.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.RecipeListResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapProductionView) {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.repo.ListLatest(ctx, actor.CompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *ToRecipeResponse(r))
	}
	return &dto.RecipeListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// Revise modifica una receta. Si alguna producción ya la usó, no se toca: se crea la
// versión siguiente y la anterior queda IsLatest=false. Devuelve la versión vigente.
func (uc *UseCase) Revise(ctx context.Context, actor entity.Actor, id string, in dto.ReviseRecipeRequest) (*dto.RecipeResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapRecipeManage) {
		return nil, domain.ErrUnauthorized
	}
	if in.Name == nil && in.Ingredients == nil {
		return nil, domain.Invalid("body", "sin cambios")
	}
	var ingredients []entity.Ingredient
	if in.Ingredients != nil {
		var err error
		if ingredients, err = uc.buildIngredients(ctx, actor.CompanyID, in.Ingredients); err != nil {
			return nil, err
		}
	}

	var out *entity.Recipe
	var versioned bool
	err := uc.txRunner.RunCatalog(ctx, func(
		recipeRepo repository.RecipeRepository,
		runRepo repository.ProductionRunRepository,
	) error {
		current, err := recipeRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil || current.CompanyID != actor.CompanyID {
			return domain.ErrNotFound
		}
		if !current.IsLatest {
			return domain.ErrRecipeSuperseded
		}
		next := *current
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.Invalid("name", "es requerido")
			}
			next.Name = name
		}
		if ingredients != nil {
			next.Ingredients = ingredients
		}
		next.UpdatedAt = time.Now()

		used, err := runRepo.CountByRecipe(ctx, current.ID)
		if err != nil {
			return err
		}
		if used == 0 {
			if err := recipeRepo.Update(ctx, &next); err != nil {
				return err
			}
			out = &next
			return nil
		}

		parent := current.ID
		next.ID = uuid.New().String()
		next.Version = current.Version + 1
		next.ParentRecipeID = &parent
		next.IsLatest = true
		next.CreatedBy = actor.UserID
		next.CreatedAt = next.UpdatedAt
		if err := recipeRepo.MarkSuperseded(ctx, current.ID); err != nil {
			return err
		}
		if err := recipeRepo.Create(ctx, &next); err != nil {
			return err
		}
		out = &next
		versioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if versioned {
		uc.log.Info().
			Str("recipe_id", out.ID).
			Str("parent_id", *out.ParentRecipeID).
			Int("version", out.Version).
			Msg("receta usada en producción: nueva versión creada")
	}
	return ToRecipeResponse(out), nil
}

// buildIngredients valida las líneas y toma nombre y tipo del ítem vinculado.
// Una línea sin material_id se vincula por nombre si el ítem existe; si no existe se
// conserva solo el nombre (importación de recetas antiguas).
func (uc *UseCase) buildIngredients(ctx context.Context, companyID string, in []dto.IngredientRequest) ([]entity.Ingredient, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("ingredients", "se requiere al menos un ingrediente")
	}
	out := make([]entity.Ingredient, 0, len(in))
	for i, line := range in {
		field := fmt.Sprintf("ingredients[%d]", i)
		if !line.QuantityPerUnit.GreaterThan(decimal.Zero) {
			return nil, domain.Invalid(field+".quantity_per_unit", "debe ser mayor que cero")
		}
		if !entity.WithinScale(line.QuantityPerUnit) {
			return nil, domain.Invalid(field+".quantity_per_unit", fmt.Sprintf("admite hasta %d decimales", entity.QuantityScale))
		}
		ing := entity.Ingredient{
			MaterialID:      strings.TrimSpace(line.MaterialID),
			MaterialName:    strings.TrimSpace(line.MaterialName),
			QuantityPerUnit: line.QuantityPerUnit,
			Unit:            strings.TrimSpace(line.Unit),
		}
		var item *entity.InventoryItem
		var err error
		switch {
		case ing.MaterialID != "":
			item, err = uc.itemRepo.GetByID(ctx, ing.MaterialID)
			if err != nil {
				return nil, err
			}
			if item == nil || item.CompanyID != companyID {
				return nil, fmt.Errorf("%s: %w", field, domain.ErrNotFound)
			}
		case ing.MaterialName != "":
			item, err = uc.itemRepo.GetByName(ctx, companyID, ing.MaterialName)
			if err != nil {
				return nil, err
			}
		default:
			return nil, domain.Invalid(field+".material_id", "es requerido")
		}
		if item != nil {
			ing.MaterialID = item.ID
			ing.MaterialName = item.Name
			ing.MaterialType = item.ItemType
			if ing.Unit == "" {
				ing.Unit = item.Unit
			}
			if _, ok := entity.ConvertQuantity(decimal.NewFromInt(1), ing.Unit, item.Unit); !ok {
				return nil, domain.Invalid(field+".unit", fmt.Sprintf("%q no es compatible con la unidad del material (%s)", ing.Unit, item.Unit))
			}
		}
		if ing.Unit == "" {
			return nil, domain.Invalid(field+".unit", "es requerido")
		}
		out = append(out, ing)
	}
	return out, nil
}

// ToRecipeResponse convierte la entidad a DTO.
func ToRecipeResponse(r *entity.Recipe) *dto.RecipeResponse {
	if r == nil {
		return nil
	}
	ings := make([]dto.IngredientResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ings = append(ings, dto.IngredientResponse{
			MaterialID:      i.MaterialID,
			MaterialName:    i.MaterialName,
			MaterialType:    i.MaterialType,
			QuantityPerUnit: i.QuantityPerUnit,
			Unit:            i.Unit,
		})
	}
	return &dto.RecipeResponse{
		ID:             r.ID,
		CompanyID:      r.CompanyID,
		ProductCode:    r.ProductCode,
		Name:           r.Name,
		Version:        r.Version,
		IsLatest:       r.IsLatest,
		ParentRecipeID: r.ParentRecipeID,
		TotalWeight:    r.TotalWeight(),
		Ingredients:    ings,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
