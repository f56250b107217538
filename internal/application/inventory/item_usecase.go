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

// ItemUseCase casos de uso de lectura y alta de materiales. Quantity y costo se manejan vía StockLedger.
type ItemUseCase struct {
	repo  repository.InventoryItemRepository
	authz ports.Authorizer
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.InventoryItemRepository, authz ports.Authorizer) *ItemUseCase {
	return &ItemUseCase{repo: repo, authz: authz}
}

// Create crea un material con existencia 0.
func (uc *ItemUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryManage) {
		return nil, domain.ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if !entity.ValidCategory(in.Category) {
		return nil, domain.Invalid("category", "categoría inválida")
	}
	if !entity.ValidItemType(in.ItemType) {
		return nil, domain.Invalid("item_type", "tipo inválido")
	}
	if in.Unit == "" {
		return nil, domain.Invalid("unit", "es requerido")
	}
	if in.UnitCost.LessThan(decimal.Zero) || in.MinThreshold.LessThan(decimal.Zero) {
		return nil, domain.Invalid("unit_cost", "valores negativos no permitidos")
	}
	if in.MaxCapacity != nil && !in.MaxCapacity.GreaterThan(decimal.Zero) {
		return nil, domain.Invalid("max_capacity", "debe ser mayor que cero")
	}
	if !entity.WithinScale(in.UnitCost) || !entity.WithinScale(in.MinThreshold) ||
		(in.MaxCapacity != nil && !entity.WithinScale(*in.MaxCapacity)) {
		return nil, domain.Invalid("unit_cost", fmt.Sprintf("los valores admiten hasta %d decimales", entity.QuantityScale))
	}
	existing, err := uc.repo.GetByName(ctx, actor.CompanyID, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		CompanyID:    actor.CompanyID,
		Name:         in.Name,
		Category:     in.Category,
		ItemType:     in.ItemType,
		Quantity:     decimal.Zero,
		Unit:         in.Unit,
		UnitCost:     in.UnitCost,
		TotalValue:   decimal.Zero,
		MinThreshold: in.MinThreshold,
		MaxCapacity:  in.MaxCapacity,
		LocationID:   in.LocationID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un material de la empresa del actor.
func (uc *ItemUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.InventoryItemResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryView) {
		return nil, domain.ErrUnauthorized
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// List lista materiales con paginación.
func (uc *ItemUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.InventoryItemListResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryView) {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.repo.ListByCompany(ctx, actor.CompanyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.InventoryItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// LowStock devuelve los materiales en o por debajo de su mínimo.
func (uc *ItemUseCase) LowStock(ctx context.Context, actor entity.Actor) ([]dto.InventoryItemResponse, error) {
	if !uc.authz.Authorize(ctx, actor, ports.CapInventoryView) {
		return nil, domain.ErrUnauthorized
	}
	list, err := uc.repo.ListBelowThreshold(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *toItemResponse(it))
	}
	return out, nil
}

func toItemResponse(i *entity.InventoryItem) *dto.InventoryItemResponse {
	if i == nil {
		return nil
	}
	return &dto.InventoryItemResponse{
		ID:           i.ID,
		CompanyID:    i.CompanyID,
		Name:         i.Name,
		Category:     i.Category,
		ItemType:     i.ItemType,
		Quantity:     i.Quantity,
		Unit:         i.Unit,
		UnitCost:     i.UnitCost,
		TotalValue:   i.TotalValue,
		MinThreshold: i.MinThreshold,
		MaxCapacity:  i.MaxCapacity,
		LocationID:   i.LocationID,
		BelowMinimum: i.BelowThreshold(),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
