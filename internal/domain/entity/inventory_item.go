package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de ítems de inventario.
const (
	CategoryAsset       = "Asset"
	CategoryConsumable  = "Consumable"
	CategoryEquipment   = "Equipment"
	CategoryRawMaterial = "RawMaterial"
)

// Tipos de ítem. Cement es el único que se segrega por silo.
const (
	ItemTypeCement    = "Cement"
	ItemTypeAggregate = "Aggregate"
	ItemTypeAdmixture = "Admixture"
	ItemTypeWater     = "Water"
	ItemTypeGeneral   = "General"
)

// QuantityScale es la cantidad de decimales con que se guardan cantidades y costos.
const QuantityScale = 4

// WithinScale informa si d no tiene más decimales que QuantityScale.
func WithinScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(QuantityScale))
}

// InventoryItem es un material con existencia propia. Quantity nunca queda negativa
// después de una transacción confirmada y solo cambia vía el StockLedger.
type InventoryItem struct {
	ID           string
	CompanyID    string
	Name         string
	Category     string
	ItemType     string
	Quantity     decimal.Decimal
	Unit         string
	UnitCost     decimal.Decimal // costo promedio ponderado
	TotalValue   decimal.Decimal // Quantity * UnitCost
	MinThreshold decimal.Decimal
	MaxCapacity  *decimal.Decimal
	LocationID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsCement informa si el ítem es cemento.
func (i *InventoryItem) IsCement() bool {
	return i.ItemType == ItemTypeCement
}

// BelowThreshold informa si la existencia llegó al mínimo configurado.
func (i *InventoryItem) BelowThreshold() bool {
	return i.MinThreshold.GreaterThan(decimal.Zero) && i.Quantity.LessThanOrEqual(i.MinThreshold)
}

// RecomputeValue recalcula TotalValue a partir de Quantity y UnitCost.
func (i *InventoryItem) RecomputeValue() {
	i.TotalValue = i.Quantity.Mul(i.UnitCost).Round(QuantityScale)
}

// ValidCategory valida la categoría.
func ValidCategory(c string) bool {
	switch c {
	case CategoryAsset, CategoryConsumable, CategoryEquipment, CategoryRawMaterial:
		return true
	}
	return false
}

// ValidItemType valida el tipo de ítem.
func ValidItemType(t string) bool {
	switch t {
	case ItemTypeCement, ItemTypeAggregate, ItemTypeAdmixture, ItemTypeWater, ItemTypeGeneral:
		return true
	}
	return false
}
