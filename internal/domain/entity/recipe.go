package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Recipe es el diseño de mezcla (bill of materials) para producir 1 m³ de una resistencia de concreto.
// Una receta ya usada por una producción no se modifica: se crea una nueva versión (ParentRecipeID).
type Recipe struct {
	ID             string
	CompanyID      string
	ProductCode    string // código visible, único por empresa entre versiones vigentes
	Name           string
	Ingredients    []Ingredient
	Version        int
	IsLatest       bool
	ParentRecipeID *string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Ingredient es una línea de la receta. QuantityPerUnit es por metro cúbico de producto.
// MaterialID es el vínculo estable al ítem de inventario; MaterialName solo se usa para
// recetas antiguas que no guardaron el ID.
type Ingredient struct {
	MaterialID      string
	MaterialName    string
	MaterialType    string // tipo del ítem al momento de crear la receta (Cement, Aggregate, ...)
	QuantityPerUnit decimal.Decimal
	Unit            string
}

// IsCement informa si el ingrediente se descuenta del silo elegido.
func (i Ingredient) IsCement() bool {
	return strings.EqualFold(i.MaterialType, ItemTypeCement)
}

// Factores de conversión a kg para unidades de masa.
var massUnitsKg = map[string]decimal.Decimal{
	"kg":  decimal.NewFromInt(1),
	"g":   decimal.NewFromFloat(0.001),
	"t":   decimal.NewFromInt(1000),
	"ton": decimal.NewFromInt(1000),
}

// MassFactor devuelve el factor a kg de la unidad; ok=false si no es una unidad de masa.
func MassFactor(unit string) (decimal.Decimal, bool) {
	f, ok := massUnitsKg[strings.ToLower(strings.TrimSpace(unit))]
	return f, ok
}

// SameUnit compara unidades sin mayúsculas ni espacios extremos.
func SameUnit(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ConvertQuantity expresa q, medida en from, en la unidad to. Unidades iguales no se convierten;
// entre unidades de masa se usa MassFactor. ok=false si las unidades no son compatibles.
func ConvertQuantity(q decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	if SameUnit(from, to) {
		return q, true
	}
	ff, okFrom := MassFactor(from)
	ft, okTo := MassFactor(to)
	if !okFrom || !okTo {
		return decimal.Zero, false
	}
	return q.Mul(ff).Div(ft), true
}

// TotalWeight suma en kg las cantidades por m³ de los ingredientes con unidad de masa.
func (r *Recipe) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, ing := range r.Ingredients {
		if f, ok := MassFactor(ing.Unit); ok {
			total = total.Add(ing.QuantityPerUnit.Mul(f))
		}
	}
	return total
}

// HasCement informa si algún ingrediente es cemento.
func (r *Recipe) HasCement() bool {
	for _, ing := range r.Ingredients {
		if ing.IsCement() {
			return true
		}
	}
	return false
}
