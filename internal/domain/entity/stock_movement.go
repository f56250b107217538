package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de existencias.
const (
	MovementTypeIN  = "IN"  // entrada (stock-in)
	MovementTypeOUT = "OUT" // salida (producción)
)

// Referencias de origen del movimiento.
const (
	MovementRefProductionRun = "production_run"
	MovementRefStockIn       = "stock_in"
)

// StockMovement es el registro de cada ajuste hecho por el StockLedger.
type StockMovement struct {
	ID              string
	CompanyID       string
	InventoryItemID string
	Type            string
	Quantity        decimal.Decimal // positivo entrada, negativo salida
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	BalanceAfter    decimal.Decimal
	ReferenceType   string
	ReferenceID     string
	Note            string
	CreatedAt       time.Time
	CreatedBy       string
}
