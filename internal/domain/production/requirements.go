// Package production contiene el cálculo puro de requerimientos de material de una producción.
// No hace I/O: recibe la receta, el volumen y una vista de existencias ya cargada.
package production

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

// StockView resuelve ítems de inventario para el cálculo.
type StockView interface {
	ItemByID(id string) *entity.InventoryItem
	ItemByName(name string) *entity.InventoryItem
}

// Requirement es el resultado por ingrediente: cuánto se necesita y cuánto hay.
type Requirement struct {
	Ingredient      string
	InventoryItemID string
	Unit            string // unidad del ítem de inventario una vez resuelto
	RecipeUnit      string
	IsCement        bool
	QuantityPerUnit decimal.Decimal
	Required        decimal.Decimal
	Available       decimal.Decimal
	Shortfall       decimal.Decimal
	IsSufficient    bool
	Resolved        bool
	ResolvedByName  bool
	UnitMismatch    bool // la unidad de la receta no se puede expresar en la del ítem
}

// ComputeRequirements calcula required = QuantityPerUnit * volume para cada ingrediente y lo
// compara con la existencia resuelta. Required queda en la unidad del ítem (convirtiendo entre
// unidades de masa) y redondeado a entity.QuantityScale decimales.
// Con volume <= 0 devuelve nil (sin vista previa).
// siloCement es el ítem de cemento del silo elegido; puede ser nil.
func ComputeRequirements(recipe *entity.Recipe, volume decimal.Decimal, view StockView, siloCement *entity.InventoryItem) []Requirement {
	if recipe == nil || !volume.GreaterThan(decimal.Zero) {
		return nil
	}
	out := make([]Requirement, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		req := Requirement{
			Ingredient:      ing.MaterialName,
			Unit:            ing.Unit,
			RecipeUnit:      ing.Unit,
			IsCement:        ing.IsCement(),
			QuantityPerUnit: ing.QuantityPerUnit,
			Required:        ing.QuantityPerUnit.Mul(volume),
			Available:       decimal.Zero,
		}
		item, byName := ResolveIngredient(ing, view, siloCement)
		if item != nil {
			req.InventoryItemID = item.ID
			req.Available = item.Quantity
			req.Resolved = true
			req.ResolvedByName = byName
			if req.Ingredient == "" {
				req.Ingredient = item.Name
			}
			switch {
			case ing.Unit == "":
				req.Unit = item.Unit
			default:
				if conv, ok := entity.ConvertQuantity(req.Required, ing.Unit, item.Unit); ok {
					req.Required = conv
					req.Unit = item.Unit
				} else {
					req.UnitMismatch = true
				}
			}
		}
		req.Required = req.Required.Round(entity.QuantityScale)
		req.IsSufficient = req.Resolved && !req.UnitMismatch && req.Available.GreaterThanOrEqual(req.Required)
		if !req.IsSufficient && !req.UnitMismatch {
			req.Shortfall = req.Required.Sub(req.Available)
		}
		out = append(out, req)
	}
	return out
}

// ResolveIngredient aplica la resolución en dos pasos:
//  1. cemento con silo elegido -> ítem de cemento del silo;
//  2. MaterialID -> ítem por ID;
//  3. solo si no hay MaterialID: coincidencia por nombre (recetas antiguas).
//
// byName indica que se usó el camino de compatibilidad por nombre.
func ResolveIngredient(ing entity.Ingredient, view StockView, siloCement *entity.InventoryItem) (item *entity.InventoryItem, byName bool) {
	if ing.IsCement() && siloCement != nil {
		return siloCement, false
	}
	if view == nil {
		return nil, false
	}
	if ing.MaterialID != "" {
		return view.ItemByID(ing.MaterialID), false
	}
	if strings.TrimSpace(ing.MaterialName) == "" {
		return nil, false
	}
	item = view.ItemByName(ing.MaterialName)
	return item, item != nil
}

// CheckSufficiency es el control de suficiencia. Primero rechaza unidades incompatibles con
// domain.ErrUnitMismatch; luego devuelve *domain.InsufficientStockError para el primer ingrediente
// (en orden de receta) cuya existencia no alcanza. También valida el consumo combinado cuando dos
// ingredientes resuelven al mismo ítem.
func CheckSufficiency(reqs []Requirement) error {
	for _, r := range reqs {
		if r.UnitMismatch {
			return fmt.Errorf("%s en %s contra ítem %s: %w", r.Ingredient, r.RecipeUnit, r.InventoryItemID, domain.ErrUnitMismatch)
		}
	}
	for _, r := range reqs {
		if !r.IsSufficient {
			return &domain.InsufficientStockError{
				Ingredient:      r.Ingredient,
				InventoryItemID: r.InventoryItemID,
				Unit:            r.Unit,
				Required:        r.Required,
				Available:       r.Available,
			}
		}
	}
	for _, agg := range AggregateByItem(reqs) {
		if agg.Required.GreaterThan(agg.Available) {
			return &domain.InsufficientStockError{
				Ingredient:      agg.Ingredient,
				InventoryItemID: agg.InventoryItemID,
				Unit:            agg.Unit,
				Required:        agg.Required,
				Available:       agg.Available,
			}
		}
	}
	return nil
}

// AggregateByItem suma lo requerido por ítem de inventario, preservando el orden de aparición.
// Requerimientos sin resolver se omiten.
func AggregateByItem(reqs []Requirement) []Requirement {
	idx := make(map[string]int, len(reqs))
	out := make([]Requirement, 0, len(reqs))
	for _, r := range reqs {
		if !r.Resolved {
			continue
		}
		if i, ok := idx[r.InventoryItemID]; ok {
			out[i].Required = out[i].Required.Add(r.Required)
			out[i].IsSufficient = out[i].Available.GreaterThanOrEqual(out[i].Required)
			continue
		}
		idx[r.InventoryItemID] = len(out)
		out = append(out, r)
	}
	return out
}

// CementUsed suma en kg lo requerido de los ingredientes de cemento. Un cemento con unidad que
// no es de masa se suma tal cual.
func CementUsed(reqs []Requirement) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reqs {
		if !r.IsCement {
			continue
		}
		if f, ok := entity.MassFactor(r.Unit); ok {
			total = total.Add(r.Required.Mul(f))
			continue
		}
		total = total.Add(r.Required)
	}
	return total.Round(entity.QuantityScale)
}
