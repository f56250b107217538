package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInventoryItemRequest entrada para crear un material. La cantidad inicia en 0:
// las existencias entran solo por POST /api/inventory/stock-in.
type CreateInventoryItemRequest struct {
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	ItemType     string           `json:"item_type"`
	Unit         string           `json:"unit"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	MinThreshold decimal.Decimal  `json:"min_threshold"`
	MaxCapacity  *decimal.Decimal `json:"max_capacity,omitempty"`
	LocationID   *string          `json:"location_id,omitempty"`
}

// InventoryItemResponse salida de un material.
type InventoryItemResponse struct {
	ID           string           `json:"id"`
	CompanyID    string           `json:"company_id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	ItemType     string           `json:"item_type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	MinThreshold decimal.Decimal  `json:"min_threshold"`
	MaxCapacity  *decimal.Decimal `json:"max_capacity,omitempty"`
	LocationID   *string          `json:"location_id,omitempty"`
	BelowMinimum bool             `json:"below_minimum"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// InventoryItemListResponse lista paginada de materiales.
type InventoryItemListResponse struct {
	Items []InventoryItemResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// StockInRequest body para POST /api/inventory/stock-in.
type StockInRequest struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Note            string          `json:"note"`
}
