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

var _ repository.OrderLineItemRepository = (*OrderLineItemRepo)(nil)

// OrderLineItemRepo líneas de pedido sobre PostgreSQL (usable con pool o tx).
type OrderLineItemRepo struct {
	q Querier
}

// NewOrderLineItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderLineItemRepository(q Querier) *OrderLineItemRepo {
	return &OrderLineItemRepo{q: q}
}

const lineColumns = `id, company_id, order_id, client_id, recipe_id, cubic_meters, delivered_qty, status, updated_at`

func (r *OrderLineItemRepo) get(ctx context.Context, op, query, id string) (*entity.OrderLineItem, error) {
	var l entity.OrderLineItem
	var recipeID *string
	err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.CompanyID, &l.OrderID, &l.ClientID, &recipeID,
		&l.CubicMeters, &l.DeliveredQty, &l.Status, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapTxError(fmt.Errorf("%s: %w", op, err))
	}
	l.RecipeID = derefString(recipeID)
	return &l, nil
}

// GetByID obtiene una línea de pedido.
func (r *OrderLineItemRepo) GetByID(ctx context.Context, id string) (*entity.OrderLineItem, error) {
	return r.get(ctx, "get order line", `SELECT `+lineColumns+` FROM order_line_items WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea la línea (SELECT FOR UPDATE).
func (r *OrderLineItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.OrderLineItem, error) {
	return r.get(ctx, "get order line for update", `SELECT `+lineColumns+` FROM order_line_items WHERE id = $1 FOR UPDATE`, id)
}

// UpdateDelivery guarda cantidad entregada y estado.
func (r *OrderLineItemRepo) UpdateDelivery(ctx context.Context, l *entity.OrderLineItem) error {
	tag, err := r.q.Exec(ctx, `UPDATE order_line_items SET delivered_qty = $2, status = $3, updated_at = $4 WHERE id = $1`,
		l.ID, l.DeliveredQty, l.Status, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order line delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
