package export_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/export"
)

func TestExportRuns_DosHojas(t *testing.T) {
	runs := []*entity.ProductionRun{{
		ID: "run-1", RecipeID: "rec-c25", RecipeVersion: 1, SiloID: "silo-1",
		Quantity: decimal.NewFromInt(3), CementUsed: decimal.NewFromInt(900), Status: entity.RunStatusCompleted,
		CreatedBy: "u-op", CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		Deductions: []entity.Deduction{
			{InventoryItemID: "cem-1", MaterialName: "Cemento", QuantityDeducted: decimal.NewFromInt(900), Unit: "kg", UnitCost: decimal.RequireFromString("0.5"), IsCement: true},
			{InventoryItemID: "agg-1", MaterialName: "Agregado", QuantityDeducted: decimal.NewFromInt(5400), Unit: "kg"},
		},
	}}

	data, err := export.NewRunsXLSX().ExportRuns(context.Background(), runs, map[string]string{"rec-c25": "C25"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.SheetRuns)
	require.NoError(t, err)
	require.Len(t, rows, 2, "encabezado + 1 producción")
	assert.Equal(t, "run-1", rows[1][0])
	assert.Equal(t, "C25", rows[1][2])

	ded, err := f.GetRows(export.SheetDeductions)
	require.NoError(t, err)
	require.Len(t, ded, 3)
	assert.Equal(t, "Cemento", ded[1][2])
	assert.Equal(t, "450", ded[1][6])
}
