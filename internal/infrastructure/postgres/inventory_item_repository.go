package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, company_id, name, category, item_type, quantity, unit, unit_cost, total_value,
		min_threshold, max_capacity, location_id, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(&it.ID, &it.CompanyID, &it.Name, &it.Category, &it.ItemType, &it.Quantity, &it.Unit,
		&it.UnitCost, &it.TotalValue, &it.MinThreshold, &it.MaxCapacity, &it.LocationID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *InventoryItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func (r *InventoryItemRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Create persiste un ítem nuevo.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.CompanyID, it.Name, it.Category, it.ItemType, it.Quantity, it.Unit, it.UnitCost, it.TotalValue,
		it.MinThreshold, it.MaxCapacity, it.LocationID, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetByName busca por nombre normalizado; usa el índice único (company_id, lower(btrim(name))).
func (r *InventoryItemRepo) GetByName(ctx context.Context, companyID, name string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE company_id = $1 AND lower(btrim(name)) = lower(btrim($2))
		ORDER BY id LIMIT 1`
	return r.getOne(ctx, "get inventory item by name", query, companyID, name)
}

// ListByCompany lista ítems de la empresa ordenados por nombre.
func (r *InventoryItemRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	return r.list(ctx, "list inventory items", query, companyID, limit, offset)
}

// ListBelowThreshold lista ítems con cantidad en o por debajo del mínimo configurado.
func (r *InventoryItemRepo) ListBelowThreshold(ctx context.Context, companyID string) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE company_id = $1 AND min_threshold > 0 AND quantity <= min_threshold
		ORDER BY name`
	return r.list(ctx, "list low stock", query, companyID)
}

// LockForUpdate bloquea las filas (SELECT FOR UPDATE) en orden ascendente de ID para evitar deadlocks.
func (r *InventoryItemRepo) LockForUpdate(ctx context.Context, ids []string) ([]*entity.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	list, err := r.list(ctx, "lock inventory items", query, ids)
	if err != nil {
		return nil, mapTxError(err)
	}
	return list, nil
}

// ApplyDelta ajusta cantidad con guarda (quantity + delta >= 0) y recalcula el valor total.
// Si la guarda no se cumple no hay fila afectada y se devuelve ErrConcurrencyConflict.
func (r *InventoryItemRepo) ApplyDelta(ctx context.Context, id string, delta, unitCost decimal.Decimal) (*entity.InventoryItem, error) {
	query := `
		UPDATE inventory_items
		SET quantity = quantity + $2,
		    unit_cost = $3,
		    total_value = (quantity + $2) * $3,
		    updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING ` + itemColumns
	it, err := scanItem(r.q.QueryRow(ctx, query, id, delta, unitCost))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, mapTxError(fmt.Errorf("apply stock delta: %w", err))
	}
	return it, nil
}

// UpdateLocation asigna o quita la ubicación del ítem.
func (r *InventoryItemRepo) UpdateLocation(ctx context.Context, id string, locationID *string) error {
	tag, err := r.q.Exec(ctx, `UPDATE inventory_items SET location_id = $2, updated_at = now() WHERE id = $1`, id, locationID)
	if err != nil {
		return fmt.Errorf("update item location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
