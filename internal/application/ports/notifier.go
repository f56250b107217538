package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductionEvent es lo que se publica tras confirmar una producción.
type ProductionEvent struct {
	CompanyID   string
	RunID       string
	ProductCode string
	Volume      decimal.Decimal
	CreatedBy   string
	LowStock    []LowStockItem
}

// LowStockItem es un ítem que quedó en o por debajo de su mínimo.
type LowStockItem struct {
	InventoryItemID string
	Name            string
	Quantity        decimal.Decimal
	MinThreshold    decimal.Decimal
	Unit            string
}

// Notifier es el canal lateral posterior al commit. Su error nunca revierte la producción.
type Notifier interface {
	NotifyProductionRun(ctx context.Context, event ProductionEvent) error
}
