// Package export arma hojas de cálculo del libro de producciones.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Concreto-api/internal/application/production"
	"github.com/jhoicas/Concreto-api/internal/domain/entity"
)

var _ production.LedgerExporter = (*RunsXLSX)(nil)

// Hojas del libro.
const (
	SheetRuns       = "Producciones"
	SheetDeductions = "Descuentos"
)

// RunsXLSX exporta producciones y descuentos a un .xlsx con dos hojas.
type RunsXLSX struct{}

// NewRunsXLSX construye el exportador.
func NewRunsXLSX() *RunsXLSX { return &RunsXLSX{} }

// ExportRuns escribe una fila por producción y una fila por descuento.
func (x *RunsXLSX) ExportRuns(ctx context.Context, runs []*entity.ProductionRun, productCodes map[string]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetRuns); err != nil {
		return nil, fmt.Errorf("xlsx: hoja producciones: %w", err)
	}
	if _, err := f.NewSheet(SheetDeductions); err != nil {
		return nil, fmt.Errorf("xlsx: hoja descuentos: %w", err)
	}

	runHeader := []interface{}{"run_id", "fecha", "producto", "version", "silo_id", "volumen_m3", "cemento_kg", "estado", "pedido", "cliente", "usuario"}
	if err := f.SetSheetRow(SheetRuns, "A1", &runHeader); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}
	dedHeader := []interface{}{"run_id", "inventory_item_id", "material", "cantidad", "unidad", "costo_unitario", "costo_total", "es_cemento"}
	if err := f.SetSheetRow(SheetDeductions, "A1", &dedHeader); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}

	runRow, dedRow := 2, 2
	for _, r := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vals := []interface{}{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			productCodes[r.RecipeID],
			r.RecipeVersion,
			r.SiloID,
			r.Quantity.InexactFloat64(),
			r.CementUsed.InexactFloat64(),
			r.Status,
			deref(r.OrderID),
			deref(r.ClientID),
			r.CreatedBy,
		}
		if err := setRow(f, SheetRuns, runRow, vals); err != nil {
			return nil, err
		}
		runRow++

		for _, d := range r.Deductions {
			vals := []interface{}{
				r.ID,
				d.InventoryItemID,
				d.MaterialName,
				d.QuantityDeducted.InexactFloat64(),
				d.Unit,
				d.UnitCost.InexactFloat64(),
				d.QuantityDeducted.Mul(d.UnitCost).InexactFloat64(),
				d.IsCement,
			}
			if err := setRow(f, SheetDeductions, dedRow, vals); err != nil {
				return nil, err
			}
			dedRow++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, vals []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: celda: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("xlsx: fila %d: %w", row, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
