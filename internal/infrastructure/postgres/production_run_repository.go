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

var _ repository.ProductionRunRepository = (*ProductionRunRepo)(nil)

// ProductionRunRepo producciones y sus descuentos sobre PostgreSQL. Solo inserción.
type ProductionRunRepo struct {
	q Querier
}

// NewProductionRunRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRunRepository(q Querier) *ProductionRunRepo {
	return &ProductionRunRepo{q: q}
}

const runColumns = `id, company_id, recipe_id, recipe_version, silo_id, quantity, cement_used, status,
		client_id, order_id, order_line_item_id, created_by, created_at`

func scanRun(row pgx.Row) (*entity.ProductionRun, error) {
	var run entity.ProductionRun
	var createdBy *string
	if err := row.Scan(&run.ID, &run.CompanyID, &run.RecipeID, &run.RecipeVersion, &run.SiloID, &run.Quantity,
		&run.CementUsed, &run.Status, &run.ClientID, &run.OrderID, &run.OrderLineItemID, &createdBy, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.CreatedBy = derefString(createdBy)
	return &run, nil
}

// Create inserta la producción y cada Deduction con un batch (un solo viaje a la DB).
func (r *ProductionRunRepo) Create(ctx context.Context, run *entity.ProductionRun) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO production_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.CompanyID, run.RecipeID, run.RecipeVersion, run.SiloID, run.Quantity, run.CementUsed, run.Status,
		run.ClientID, run.OrderID, run.OrderLineItemID, nullIfEmpty(run.CreatedBy), run.CreatedAt)
	for i, d := range run.Deductions {
		batch.Queue(`
			INSERT INTO production_run_deductions (id, run_id, position, inventory_item_id, material_name,
				quantity_deducted, unit, unit_cost, is_cement)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			d.ID, run.ID, i, d.InventoryItemID, d.MaterialName, d.QuantityDeducted, d.Unit, d.UnitCost, d.IsCement)
	}
	br := r.q.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("create production run: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("create production run: %w", err)
	}
	return nil
}

// GetByID obtiene una producción con sus descuentos.
func (r *ProductionRunRepo) GetByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	run, err := scanRun(r.q.QueryRow(ctx, `SELECT `+runColumns+` FROM production_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production run: %w", err)
	}
	if run.Deductions, err = r.loadDeductions(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *ProductionRunRepo) loadDeductions(ctx context.Context, runID string) ([]entity.Deduction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, run_id, inventory_item_id, material_name, quantity_deducted, unit, unit_cost, is_cement
		FROM production_run_deductions WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load deductions: %w", err)
	}
	defer rows.Close()
	var out []entity.Deduction
	for rows.Next() {
		var d entity.Deduction
		if err := rows.Scan(&d.ID, &d.RunID, &d.InventoryItemID, &d.MaterialName, &d.QuantityDeducted,
			&d.Unit, &d.UnitCost, &d.IsCement); err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByCompany lista producciones de la empresa, más recientes primero, con sus descuentos.
func (r *ProductionRunRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.ProductionRun, error) {
	query := `SELECT ` + runColumns + ` FROM production_runs
		WHERE company_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production runs: %w", err)
	}
	var list []*entity.ProductionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan production run: %w", err)
		}
		list = append(list, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, run := range list {
		if run.Deductions, err = r.loadDeductions(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// CountByRecipe cuenta producciones completadas con una versión de receta.
func (r *ProductionRunRepo) CountByRecipe(ctx context.Context, recipeID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM production_runs WHERE recipe_id = $1 AND status = $2`,
		recipeID, entity.RunStatusCompleted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count runs by recipe: %w", err)
	}
	return n, nil
}
