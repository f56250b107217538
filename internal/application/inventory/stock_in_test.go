package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/auth"
	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/inventory"
	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/memory"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

const company = "co-1"

var bodeguero = entity.Actor{UserID: "u-bod", CompanyID: company, Role: entity.RoleBodeguero}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newStore() *memory.Store {
	store := memory.NewStore()
	store.PutItem(entity.InventoryItem{ID: "agg-1", CompanyID: company, Name: "Agregado", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeAggregate, Unit: "kg"})
	return store
}

func newStockIn(store *memory.Store) *inventory.StockInUseCase {
	return inventory.NewStockInUseCase(store, auth.NewRolePolicy(nil), inventory.NewStockLedger(), zerolog.Nop())
}

// ─── Entrada de inventario ────────────────────────────────────────────────────

func TestStockIn_RedondeaValoresAEscalaDeColumna(t *testing.T) {
	store := newStore()

	out, err := newStockIn(store).StockIn(context.Background(), bodeguero, dto.StockInRequest{
		InventoryItemID: "agg-1", Quantity: d("3.3333"), UnitCost: d("0.3333"),
	})
	require.NoError(t, err)
	assert.True(t, out.Quantity.Equal(d("3.3333")))
	assert.True(t, out.TotalValue.Equal(d("1.111")), "3.3333 * 0.3333 = 1.11098889; obtenido %s", out.TotalValue)

	movs, err := store.Movements().ListByItem(context.Background(), "agg-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].TotalCost.Equal(d("1.111")), "obtenido %s", movs[0].TotalCost)
	assert.True(t, entity.WithinScale(movs[0].TotalCost))
}

func TestStockIn_RechazaMasDecimalesQueLaColumna(t *testing.T) {
	store := newStore()
	uc := newStockIn(store)

	cases := map[string]dto.StockInRequest{
		"cantidad": {InventoryItemID: "agg-1", Quantity: d("1.00001"), UnitCost: d("1")},
		"costo":    {InventoryItemID: "agg-1", Quantity: d("1"), UnitCost: d("0.00001")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.StockIn(context.Background(), bodeguero, req)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "obtenido %v", err)
		})
	}
	assert.True(t, store.Item("agg-1").Quantity.IsZero())
	assert.Equal(t, 0, store.MovementCount())
}

// ─── Alta de materiales y ubicaciones ─────────────────────────────────────────

func TestCreateItem_RechazaMasDecimalesQueLaColumna(t *testing.T) {
	uc := inventory.NewItemUseCase(newStore().Items(), auth.NewRolePolicy(nil))
	base := dto.CreateInventoryItemRequest{Name: "Arena", Category: entity.CategoryRawMaterial, ItemType: entity.ItemTypeAggregate, Unit: "kg"}

	over := d("100.12345")
	for name, mutate := range map[string]func(*dto.CreateInventoryItemRequest){
		"costo":     func(r *dto.CreateInventoryItemRequest) { r.UnitCost = d("0.12345") },
		"umbral":    func(r *dto.CreateInventoryItemRequest) { r.MinThreshold = d("1.00001") },
		"capacidad": func(r *dto.CreateInventoryItemRequest) { r.MaxCapacity = &over },
	} {
		t.Run(name, func(t *testing.T) {
			req := base
			mutate(&req)
			_, err := uc.Create(context.Background(), bodeguero, req)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "obtenido %v", err)
		})
	}

	base.UnitCost = d("0.1234")
	_, err := uc.Create(context.Background(), bodeguero, base)
	assert.NoError(t, err)
}

func TestCreateLocation_RechazaMasDecimalesQueLaColumna(t *testing.T) {
	store := newStore()
	uc := inventory.NewLocationUseCase(store, store.Locations(), auth.NewRolePolicy(nil))

	_, err := uc.Create(context.Background(), bodeguero, dto.CreateLocationRequest{Name: "Silo 9", Type: entity.LocationTypeSilo, Capacity: d("60000.00001")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "obtenido %v", err)

	out, err := uc.Create(context.Background(), bodeguero, dto.CreateLocationRequest{Name: "Silo 9", Type: entity.LocationTypeSilo, Capacity: d("60000.5")})
	require.NoError(t, err)
	assert.True(t, out.Capacity.Equal(d("60000.5")))
}
