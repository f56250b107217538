package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
)

// LocationUseCase administra bodegas y silos, incluida la asignación de cemento por silo.
type LocationUseCase struct {
	txRunner TxRunner
	repo     repository.StorageLocationRepository
	authz    ports.Authorizer
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(txRunner TxRunner, repo repository.StorageLocationRepository, authz ports.Authorizer) *LocationUseCase {
	return &LocationUseCase{txRunner: txRunner, repo: repo, authz: authz}
}

// Create crea una ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryManage) {
		return nil, domain.ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if !entity.ValidLocationType(in.Type) {
		return nil, domain.Invalid("type", "tipo de ubicación inválido")
	}
	if in.Capacity.LessThan(decimal.Zero) {
		return nil, domain.Invalid("capacity", "no puede ser negativa")
	}
	if !entity.WithinScale(in.Capacity) {
		return nil, domain.Invalid("capacity", fmt.Sprintf("admite hasta %d decimales", entity.QuantityScale))
	}
	now := time.Now()
	loc := &entity.StorageLocation{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID,
		Name:      in.Name,
		Type:      in.Type,
		Capacity:  in.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// GetByID obtiene una ubicación de la empresa del actor.
func (uc *LocationUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.LocationResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryView) {
		return nil, domain.ErrUnauthorized
	}
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil || loc.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	return toLocationResponse(loc), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.LocationListResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryView) {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// BindCementItem asigna un ítem de cemento a un silo/contenedor.
// Reglas: el ítem debe ser Cement, no estar asignado a otro silo, y el silo solo puede
// cambiar de ítem si el actual quedó en cero.
func (uc *LocationUseCase) BindCementItem(ctx context.Context, actor entity.Actor, locationID, itemID string) (*dto.LocationResponse, error) {
	if locationID == "" || itemID == "" {
		return nil, domain.Invalid("inventory_item_id", "es requerido")
	}
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryManage) {
		return nil, domain.ErrUnauthorized
	}
	var out *entity.StorageLocation
	err := uc.txRunner.RunLocation(ctx, func(
		locRepo repository.StorageLocationRepository,
		itemRepo repository.InventoryItemRepository,
	) error {
		loc, err := locRepo.GetByID(ctx, locationID)
		if err != nil {
			return err
		}
		if loc == nil || loc.CompanyID != actor.CompanyID {
			return domain.ErrNotFound
		}
		if !loc.HoldsCement() {
			return domain.Invalid("type", "solo silos y contenedores reciben cemento")
		}
		ids := []string{itemID}
		if loc.CementItemID != nil && *loc.CementItemID != itemID {
			ids = append(ids, *loc.CementItemID)
		}
		locked, err := itemRepo.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		var item, current *entity.InventoryItem
		for _, it := range locked {
			if it.ID == itemID {
				item = it
			} else {
				current = it
			}
		}
		if item == nil || item.CompanyID != actor.CompanyID {
			return domain.ErrNotFound
		}
		if !item.IsCement() {
			return domain.Invalid("inventory_item_id", "el ítem no es cemento")
		}
		if loc.CementItemID != nil && *loc.CementItemID == itemID {
			out = loc
			return nil
		}
		other, err := locRepo.GetByCementItem(ctx, itemID)
		if err != nil {
			return err
		}
		if other != nil && other.ID != loc.ID {
			return domain.ErrSiloOccupied
		}
		if current != nil {
			if !current.Quantity.IsZero() {
				return domain.ErrSiloOccupied
			}
			if err := itemRepo.UpdateLocation(ctx, current.ID, nil); err != nil {
				return err
			}
		}
		if err := locRepo.SetCementItem(ctx, loc.ID, &item.ID); err != nil {
			return err
		}
		if err := itemRepo.UpdateLocation(ctx, item.ID, &loc.ID); err != nil {
			return err
		}
		loc.CementItemID = &item.ID
		loc.UpdatedAt = time.Now()
		out = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toLocationResponse(out), nil
}

func toLocationResponse(l *entity.StorageLocation) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:           l.ID,
		CompanyID:    l.CompanyID,
		Name:         l.Name,
		Type:         l.Type,
		Capacity:     l.Capacity,
		CementItemID: l.CementItemID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}
