package recipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/auth"
	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/recipe"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/memory"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

const company = "co-1"

var admin = entity.Actor{UserID: "u-admin", CompanyID: company, Role: entity.RoleAdmin}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCatalog(t *testing.T) *recipe.UseCase {
	t.Helper()
	store := memory.NewStore()
	store.PutItem(entity.InventoryItem{ID: "cem-silo-1", CompanyID: company, Name: "Cemento Silo 1", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeCement, Quantity: d("1000"), Unit: "kg"})
	store.PutItem(entity.InventoryItem{ID: "agg-1", CompanyID: company, Name: "Agregado", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeAggregate, Quantity: d("6000"), Unit: "kg"})
	return recipe.NewUseCase(store, store.Recipes(), store.Items(), auth.NewRolePolicy(nil), zerolog.Nop())
}

func line(materialID, qty, unit string) dto.IngredientRequest {
	return dto.IngredientRequest{MaterialID: materialID, QuantityPerUnit: d(qty), Unit: unit}
}

// ─── Unidades de los ingredientes ─────────────────────────────────────────────

func TestCreate_UnidadDeMasaConvertibleSeAcepta(t *testing.T) {
	uc := newCatalog(t)

	out, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C30", Name: "Concreto 30 MPa",
		Ingredients: []dto.IngredientRequest{line("cem-silo-1", "0.3", "t"), line("agg-1", "1.8", "t")},
	})
	require.NoError(t, err)
	require.Len(t, out.Ingredients, 2)
	assert.Equal(t, "t", out.Ingredients[0].Unit, "la receta conserva su unidad")
	assert.Equal(t, entity.ItemTypeCement, out.Ingredients[0].MaterialType)
	assert.True(t, out.TotalWeight.Equal(d("2100")), "obtenido %s", out.TotalWeight)
}

func TestCreate_UnidadIncompatibleConElMaterial(t *testing.T) {
	uc := newCatalog(t)

	_, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C30", Name: "Concreto 30 MPa",
		Ingredients: []dto.IngredientRequest{line("cem-silo-1", "6", "bolsa")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "ingredients[0].unit", ve.Field)

	list, err := uc.List(context.Background(), admin, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items, "no se crea la receta")
}

func TestCreate_SinUnidadTomaLaDelMaterial(t *testing.T) {
	uc := newCatalog(t)

	out, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C25", Name: "Concreto 25 MPa",
		Ingredients: []dto.IngredientRequest{line("agg-1", "1800", "")},
	})
	require.NoError(t, err)
	assert.Equal(t, "kg", out.Ingredients[0].Unit)
}

func TestCreate_IngredienteSinMaterialConservaSuUnidad(t *testing.T) {
	uc := newCatalog(t)

	out, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "LEG", Name: "Receta importada",
		Ingredients: []dto.IngredientRequest{{MaterialName: "Fibra", QuantityPerUnit: d("2"), Unit: "bolsa"}},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Ingredients[0].MaterialID)
	assert.Equal(t, "bolsa", out.Ingredients[0].Unit)
}

func TestRevise_UnidadIncompatibleNoModifica(t *testing.T) {
	uc := newCatalog(t)
	created, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C25", Name: "Concreto 25 MPa",
		Ingredients: []dto.IngredientRequest{line("agg-1", "1800", "kg")},
	})
	require.NoError(t, err)

	_, err = uc.Revise(context.Background(), admin, created.ID, dto.ReviseRecipeRequest{
		Ingredients: []dto.IngredientRequest{line("agg-1", "3", "m3")},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "obtenido %v", err)

	got, err := uc.GetByID(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", got.Ingredients[0].Unit)
	assert.True(t, got.Ingredients[0].QuantityPerUnit.Equal(d("1800")))
}

// ─── Validaciones ─────────────────────────────────────────────────────────────

func TestCreate_CantidadConMasDecimalesQueLaColumna(t *testing.T) {
	uc := newCatalog(t)

	_, err := uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C25", Name: "Concreto 25 MPa",
		Ingredients: []dto.IngredientRequest{line("agg-1", "0.00001", "kg")},
	})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "obtenido %v", err)
	assert.Equal(t, "ingredients[0].quantity_per_unit", ve.Field)

	_, err = uc.Create(context.Background(), admin, dto.CreateRecipeRequest{
		ProductCode: "C25", Name: "Concreto 25 MPa",
		Ingredients: []dto.IngredientRequest{line("agg-1", "0.0001", "kg")},
	})
	assert.NoError(t, err, "cuatro decimales caben en la columna")
}

func TestCreate_DuplicadoYPermisos(t *testing.T) {
	uc := newCatalog(t)
	req := dto.CreateRecipeRequest{
		ProductCode: "C25", Name: "Concreto 25 MPa",
		Ingredients: []dto.IngredientRequest{line("agg-1", "1800", "kg")},
	}
	_, err := uc.Create(context.Background(), admin, req)
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), admin, req)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	operador := entity.Actor{UserID: "u-op", CompanyID: company, Role: entity.RoleOperador}
	_, err = uc.Create(context.Background(), operador, req)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
