package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/domain"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/domain/repository"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/memory"
)

func seed() *memory.Store {
	s := memory.NewStore()
	s.PutItem(entity.InventoryItem{ID: "b", CompanyID: "co-1", Name: "Arena", Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(2)})
	s.PutItem(entity.InventoryItem{ID: "a", CompanyID: "co-1", Name: "Grava", Quantity: decimal.NewFromInt(5)})
	return s
}

func TestStore_RollbackSiFallaLaFuncion(t *testing.T) {
	s := seed()
	err := s.Run(context.Background(), func(items repository.InventoryItemRepository, _ repository.StockMovementRepository) error {
		_, err := items.ApplyDelta(context.Background(), "b", decimal.NewFromInt(-4), decimal.NewFromInt(2))
		require.NoError(t, err)
		return errors.New("abortar")
	})
	require.Error(t, err)
	assert.True(t, s.Item("b").Quantity.Equal(decimal.NewFromInt(10)), "la copia no se confirma")
}

func TestStore_CommitActualizaValor(t *testing.T) {
	s := seed()
	err := s.Run(context.Background(), func(items repository.InventoryItemRepository, _ repository.StockMovementRepository) error {
		_, err := items.ApplyDelta(context.Background(), "b", decimal.NewFromInt(-4), decimal.NewFromInt(3))
		return err
	})
	require.NoError(t, err)
	it := s.Item("b")
	assert.True(t, it.Quantity.Equal(decimal.NewFromInt(6)))
	assert.True(t, it.TotalValue.Equal(decimal.NewFromInt(18)))
}

func TestStore_ApplyDeltaNuncaNegativo(t *testing.T) {
	s := seed()
	_, err := s.Items().ApplyDelta(context.Background(), "a", decimal.NewFromInt(-6), decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
	assert.True(t, s.Item("a").Quantity.Equal(decimal.NewFromInt(5)))
}

func TestStore_LockForUpdateOrdenado(t *testing.T) {
	s := seed()
	list, err := s.Items().LockForUpdate(context.Background(), []string{"b", "a", "zz"})
	require.NoError(t, err)
	require.Len(t, list, 2, "los IDs inexistentes se omiten")
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestStore_GetByNameNormalizado(t *testing.T) {
	s := seed()
	it, err := s.Items().GetByName(context.Background(), "co-1", "  arena ")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "b", it.ID)

	it, err = s.Items().GetByName(context.Background(), "co-2", "arena")
	require.NoError(t, err)
	assert.Nil(t, it, "no cruza empresas")
}

func TestStore_FallaInyectada(t *testing.T) {
	s := seed()
	boom := errors.New("boom")
	s.InjectFault("items.LockForUpdate", boom, 1)

	_, err := s.Items().LockForUpdate(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
	_, err = s.Items().LockForUpdate(context.Background(), []string{"a"})
	assert.NoError(t, err, "solo una vez")
}
