package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Concreto-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 1000 kg a 500 + 1000 kg a 700 => 600
	got := inventory.CostCalculator(d("1000"), d("500"), d("1000"), d("700"))
	assert.True(t, got.Equal(d("600")), "costo esperado 600, obtenido %s", got)
}

func TestCostCalculator_SinStockPrevio(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, decimal.Zero, d("250"), d("812.5"))
	assert.True(t, got.Equal(d("812.5")))
}

func TestCostCalculator_SumaCero(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("10"), decimal.Zero, d("10"))
	assert.True(t, got.IsZero())
}

func TestCanDeduct(t *testing.T) {
	assert.True(t, inventory.CanDeduct(d("1000"), d("900")))
	assert.True(t, inventory.CanDeduct(d("900"), d("900")), "dejar en cero es válido")
	assert.False(t, inventory.CanDeduct(d("5000"), d("5400")))
	assert.False(t, inventory.CanDeduct(d("10"), decimal.Zero), "cantidad cero no es un retiro")
}

func TestFitsCapacity(t *testing.T) {
	max := d("30000")
	assert.True(t, inventory.FitsCapacity(d("1000"), d("500"), nil))
	assert.True(t, inventory.FitsCapacity(d("29000"), d("1000"), &max))
	assert.False(t, inventory.FitsCapacity(d("29000"), d("1001"), &max))
}
