// Package notify implementa el canal lateral de avisos posterior a una producción.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Concreto-api/internal/application/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier publica el evento en el log estructurado. La entrega push/correo queda fuera
// de este servicio: un colector de logs la toma desde aquí.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) NotifyProductionRun(ctx context.Context, e ports.ProductionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().
		Str("event", "production_run").
		Str("company_id", e.CompanyID).
		Str("run_id", e.RunID).
		Str("product_code", e.ProductCode).
		Str("volume_m3", e.Volume.String()).
		Str("created_by", e.CreatedBy).
		Msg("producción confirmada")
	for _, it := range e.LowStock {
		n.log.Warn().
			Str("event", "low_stock").
			Str("company_id", e.CompanyID).
			Str("inventory_item_id", it.InventoryItemID).
			Str("name", it.Name).
			Str("quantity", it.Quantity.String()).
			Str("min_threshold", it.MinThreshold.String()).
			Str("unit", it.Unit).
			Msg("existencia en o por debajo del mínimo")
	}
	return nil
}
