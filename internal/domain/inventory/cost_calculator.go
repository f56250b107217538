package inventory

import "github.com/shopspring/decimal"

// CostCalculator calcula el costo promedio ponderado tras una entrada de material.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// CanDeduct informa si se pueden retirar qty unidades sin dejar la existencia negativa.
func CanDeduct(current, qty decimal.Decimal) bool {
	return qty.GreaterThan(decimal.Zero) && current.Sub(qty).GreaterThanOrEqual(decimal.Zero)
}

// FitsCapacity informa si current+qty cabe en maxCapacity (nil = sin límite).
func FitsCapacity(current, qty decimal.Decimal, maxCapacity *decimal.Decimal) bool {
	if maxCapacity == nil {
		return true
	}
	return current.Add(qty).LessThanOrEqual(*maxCapacity)
}
