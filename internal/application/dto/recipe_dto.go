package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientRequest línea de receta. MaterialID es obligatorio en recetas nuevas;
// MaterialName solo se acepta sin ID para importar recetas antiguas.
type IngredientRequest struct {
	MaterialID      string          `json:"material_id"`
	MaterialName    string          `json:"material_name,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	Unit            string          `json:"unit"`
}

// CreateRecipeRequest entrada para crear una receta.
type CreateRecipeRequest struct {
	ProductCode string              `json:"product_code"`
	Name        string              `json:"name"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// ReviseRecipeRequest entrada para modificar una receta (puede generar una nueva versión).
type ReviseRecipeRequest struct {
	Name        *string             `json:"name"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// IngredientResponse línea de receta en la salida.
type IngredientResponse struct {
	MaterialID      string          `json:"material_id,omitempty"`
	MaterialName    string          `json:"material_name"`
	MaterialType    string          `json:"material_type,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	Unit            string          `json:"unit"`
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID             string               `json:"id"`
	CompanyID      string               `json:"company_id"`
	ProductCode    string               `json:"product_code"`
	Name           string               `json:"name"`
	Version        int                  `json:"version"`
	IsLatest       bool                 `json:"is_latest"`
	ParentRecipeID *string              `json:"parent_recipe_id,omitempty"`
	TotalWeight    decimal.Decimal      `json:"total_weight_kg"`
	Ingredients    []IngredientResponse `json:"ingredients"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// RecipeListResponse lista paginada de recetas vigentes.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
