package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLocationRequest entrada para crear una bodega, patio, silo o contenedor.
type CreateLocationRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Capacity decimal.Decimal `json:"capacity"`
}

// BindCementItemRequest body para PUT /api/locations/:id/cement-item.
type BindCementItemRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Capacity     decimal.Decimal `json:"capacity"`
	CementItemID *string         `json:"cement_item_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
