package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo catálogo de recetas sobre PostgreSQL. Los ingredientes viven en recipe_ingredients
// y se guardan en el orden de la receta (position).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

const recipeColumns = `id, company_id, product_code, name, version, is_latest, parent_recipe_id, created_by, created_at, updated_at`

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var rec entity.Recipe
	var createdBy *string
	if err := row.Scan(&rec.ID, &rec.CompanyID, &rec.ProductCode, &rec.Name, &rec.Version, &rec.IsLatest,
		&rec.ParentRecipeID, &createdBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.CreatedBy = derefString(createdBy)
	return &rec, nil
}

// Create inserta la receta y sus ingredientes.
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	query := `INSERT INTO recipes (` + recipeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, rec.ID, rec.CompanyID, rec.ProductCode, rec.Name, rec.Version, rec.IsLatest,
		rec.ParentRecipeID, nullIfEmpty(rec.CreatedBy), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create recipe: %w", err)
	}
	return r.insertIngredients(ctx, rec)
}

func (r *RecipeRepo) insertIngredients(ctx context.Context, rec *entity.Recipe) error {
	query := `
		INSERT INTO recipe_ingredients (recipe_id, position, material_id, material_name, material_type, quantity_per_unit, unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, ing := range rec.Ingredients {
		if _, err := r.q.Exec(ctx, query, rec.ID, i, nullIfEmpty(ing.MaterialID), ing.MaterialName, ing.MaterialType,
			ing.QuantityPerUnit, ing.Unit); err != nil {
			return fmt.Errorf("insert recipe ingredient: %w", err)
		}
	}
	return nil
}

func (r *RecipeRepo) get(ctx context.Context, op, query string, args ...any) (*entity.Recipe, error) {
	rec, err := scanRecipe(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapTxError(fmt.Errorf("%s: %w", op, err))
	}
	if rec.Ingredients, err = r.loadIngredients(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecipeRepo) loadIngredients(ctx context.Context, recipeID string) ([]entity.Ingredient, error) {
	rows, err := r.q.Query(ctx, `
		SELECT material_id, material_name, material_type, quantity_per_unit, unit
		FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY position`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe ingredients: %w", err)
	}
	defer rows.Close()
	var out []entity.Ingredient
	for rows.Next() {
		var ing entity.Ingredient
		var materialID *string
		if err := rows.Scan(&materialID, &ing.MaterialName, &ing.MaterialType, &ing.QuantityPerUnit, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		ing.MaterialID = derefString(materialID)
		out = append(out, ing)
	}
	return out, rows.Err()
}

// GetByID obtiene una versión de receta con sus ingredientes.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.get(ctx, "get recipe", `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

// GetForUpdate bloquea la versión para revisarla.
func (r *RecipeRepo) GetForUpdate(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.get(ctx, "get recipe for update", `SELECT `+recipeColumns+` FROM recipes WHERE id = $1 FOR UPDATE`, id)
}

// GetForShare bloquea la versión en modo compartido mientras se produce con ella.
func (r *RecipeRepo) GetForShare(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.get(ctx, "get recipe for share", `SELECT `+recipeColumns+` FROM recipes WHERE id = $1 FOR SHARE`, id)
}

// GetLatestByCode obtiene la versión vigente de un código de producto.
func (r *RecipeRepo) GetLatestByCode(ctx context.Context, companyID, productCode string) (*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE company_id = $1 AND product_code = $2 AND is_latest`
	return r.get(ctx, "get recipe by code", query, companyID, productCode)
}

// ListLatest lista las versiones vigentes de la empresa.
func (r *RecipeRepo) ListLatest(ctx context.Context, companyID string, limit, offset int) ([]*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes
		WHERE company_id = $1 AND is_latest ORDER BY product_code LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	var list []*entity.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Los ingredientes se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, rec := range list {
		if rec.Ingredients, err = r.loadIngredients(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Update reemplaza nombre e ingredientes de una versión.
func (r *RecipeRepo) Update(ctx context.Context, rec *entity.Recipe) error {
	tag, err := r.q.Exec(ctx, `UPDATE recipes SET name = $2, updated_at = $3 WHERE id = $1`, rec.ID, rec.Name, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("replace recipe ingredients: %w", err)
	}
	return r.insertIngredients(ctx, rec)
}

// MarkSuperseded deja la versión como no vigente.
func (r *RecipeRepo) MarkSuperseded(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE recipes SET is_latest = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("supersede recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
