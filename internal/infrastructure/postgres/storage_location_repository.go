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

var _ repository.StorageLocationRepository = (*StorageLocationRepo)(nil)

// StorageLocationRepo bodegas y silos sobre PostgreSQL (usable con pool o tx).
type StorageLocationRepo struct {
	q Querier
}

// NewStorageLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStorageLocationRepository(q Querier) *StorageLocationRepo {
	return &StorageLocationRepo{q: q}
}

const locationColumns = `id, company_id, name, type, capacity, cement_item_id, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.StorageLocation, error) {
	var l entity.StorageLocation
	if err := row.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Type, &l.Capacity, &l.CementItemID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una ubicación.
func (r *StorageLocationRepo) Create(ctx context.Context, l *entity.StorageLocation) error {
	query := `INSERT INTO storage_locations (` + locationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, l.ID, l.CompanyID, l.Name, l.Type, l.Capacity, l.CementItemID, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create storage location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID.
func (r *StorageLocationRepo) GetByID(ctx context.Context, id string) (*entity.StorageLocation, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM storage_locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage location: %w", err)
	}
	return l, nil
}

// GetByCementItem devuelve el silo que tiene asignado el ítem de cemento.
func (r *StorageLocationRepo) GetByCementItem(ctx context.Context, itemID string) (*entity.StorageLocation, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM storage_locations WHERE cement_item_id = $1`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location by cement item: %w", err)
	}
	return l, nil
}

// ListByCompany lista ubicaciones de la empresa.
func (r *StorageLocationRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.StorageLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM storage_locations WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list storage locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StorageLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan storage location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// SetCementItem asigna (o quita, con nil) el ítem de cemento del silo.
// El índice único sobre cement_item_id impide compartir un cemento entre silos.
func (r *StorageLocationRepo) SetCementItem(ctx context.Context, locationID string, itemID *string) error {
	tag, err := r.q.Exec(ctx, `UPDATE storage_locations SET cement_item_id = $2, updated_at = now() WHERE id = $1`, locationID, itemID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSiloOccupied
		}
		return fmt.Errorf("set cement item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
