package notify_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/notify"
)

func TestLogNotifier_RegistraBajoStock(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewLogNotifier(zerolog.New(&buf))

	err := n.NotifyProductionRun(context.Background(), ports.ProductionEvent{
		CompanyID: "co-1", RunID: "run-1", ProductCode: "C25", Volume: decimal.NewFromInt(3),
		LowStock: []ports.LowStockItem{{InventoryItemID: "cem-1", Name: "Cemento Silo 1", Quantity: decimal.NewFromInt(100), MinThreshold: decimal.NewFromInt(200), Unit: "kg"}},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"event":"low_stock"`)
	assert.Contains(t, out, "Cemento Silo 1")
}

func TestLogNotifier_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := notify.NewLogNotifier(zerolog.Nop()).NotifyProductionRun(ctx, ports.ProductionEvent{RunID: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
