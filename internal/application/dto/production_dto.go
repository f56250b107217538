package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PreviewRequest body para POST /api/production/preview.
type PreviewRequest struct {
	RecipeID string          `json:"recipe_id"`
	Volume   decimal.Decimal `json:"volume"`
	SiloID   string          `json:"silo_id,omitempty"`
}

// RequirementDTO requerimiento por ingrediente (vista previa, no vinculante).
type RequirementDTO struct {
	Ingredient      string          `json:"ingredient"`
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	Unit            string          `json:"unit"`
	IsCement        bool            `json:"is_cement"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	IsSufficient    bool            `json:"is_sufficient"`
	ResolvedByName  bool            `json:"resolved_by_name,omitempty"`
	UnitMismatch    bool            `json:"unit_mismatch,omitempty"`
}

// PreviewResponse salida de la vista previa.
type PreviewResponse struct {
	RecipeID      string           `json:"recipe_id"`
	Volume        decimal.Decimal  `json:"volume"`
	SiloID        string           `json:"silo_id,omitempty"`
	AllSufficient bool             `json:"all_sufficient"`
	Requirements  []RequirementDTO `json:"requirements"`
}

// ExecuteRunRequest body para POST /api/production/runs.
type ExecuteRunRequest struct {
	RecipeID        string          `json:"recipe_id"`
	SiloID          string          `json:"silo_id"`
	Volume          decimal.Decimal `json:"volume"`
	ClientID        string          `json:"client_id,omitempty"`
	OrderID         string          `json:"order_id,omitempty"`
	OrderLineItemID string          `json:"order_line_item_id,omitempty"`
}

// DeductionDTO línea descontada.
type DeductionDTO struct {
	InventoryItemID  string          `json:"inventory_item_id"`
	MaterialName     string          `json:"material_name"`
	QuantityDeducted decimal.Decimal `json:"quantity_deducted"`
	Unit             string          `json:"unit"`
}

// LinkageDTO eco de la vinculación con el pedido.
type LinkageDTO struct {
	ClientID        string          `json:"client_id,omitempty"`
	OrderID         string          `json:"order_id,omitempty"`
	OrderLineItemID string          `json:"order_line_item_id,omitempty"`
	Applied         bool            `json:"applied"`
	DeliveredQty    decimal.Decimal `json:"delivered_qty"`
	Status          string          `json:"status,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// RunSummaryResponse resumen de una producción confirmada.
type RunSummaryResponse struct {
	RunID         string          `json:"run_id"`
	RecipeID      string          `json:"recipe_id"`
	ProductCode   string          `json:"product_code"`
	RecipeVersion int             `json:"recipe_version"`
	SiloID        string          `json:"silo_id"`
	Volume        decimal.Decimal `json:"volume"`
	CementUsed    decimal.Decimal `json:"cement_used"`
	Status        string          `json:"status"`
	Deductions    []DeductionDTO  `json:"deductions"`
	Linkage       *LinkageDTO     `json:"linkage,omitempty"`
	LowStock      []string        `json:"low_stock,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RunListResponse lista paginada de producciones.
type RunListResponse struct {
	Items []RunSummaryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// InsufficientStockResponse detalle del 409 INSUFFICIENT_STOCK.
type InsufficientStockResponse struct {
	Code            string          `json:"code"`
	Message         string          `json:"message"`
	Ingredient      string          `json:"ingredient"`
	InventoryItemID string          `json:"inventory_item_id,omitempty"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	Unit            string          `json:"unit"`
}
