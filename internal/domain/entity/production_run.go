package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una producción.
const (
	RunStatusCompleted = "Completed"
	RunStatusFailed    = "Failed"
)

// ProductionRun es una ejecución "producir N m³ con la receta R desde el silo S".
// Se crea junto con sus Deductions en una sola transacción y no se edita después.
type ProductionRun struct {
	ID              string
	CompanyID       string
	RecipeID        string
	RecipeVersion   int
	SiloID          string
	Quantity        decimal.Decimal // m³ producidos
	CementUsed      decimal.Decimal
	Status          string
	ClientID        *string
	OrderID         *string
	OrderLineItemID *string
	CreatedBy       string
	CreatedAt       time.Time
	Deductions      []Deduction
}

// Deduction es una línea del rastro de auditoría: la cantidad exacta retirada de un ítem.
type Deduction struct {
	ID               string
	RunID            string
	InventoryItemID  string
	MaterialName     string
	QuantityDeducted decimal.Decimal
	Unit             string
	UnitCost         decimal.Decimal
	IsCement         bool
}
