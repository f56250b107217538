package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de entrega de una línea de pedido.
const (
	FulfillmentPending   = "Pending"
	FulfillmentPartial   = "Partial"
	FulfillmentFulfilled = "Fulfilled"
)

// OrderLineItem es una línea de pedido de venta (m³ de una receta).
// Solo DeliveredQty y Status cambian desde este servicio.
type OrderLineItem struct {
	ID           string
	CompanyID    string
	OrderID      string
	ClientID     string
	RecipeID     string
	CubicMeters  decimal.Decimal
	DeliveredQty decimal.Decimal
	Status       string
	UpdatedAt    time.Time
}

// ApplyDelivery suma qty a lo entregado y recalcula el estado.
func (l *OrderLineItem) ApplyDelivery(qty decimal.Decimal, now time.Time) {
	l.DeliveredQty = l.DeliveredQty.Add(qty)
	l.Status = FulfillmentStatus(l.DeliveredQty, l.CubicMeters)
	l.UpdatedAt = now
}

// FulfillmentStatus calcula Pending/Partial/Fulfilled.
func FulfillmentStatus(delivered, ordered decimal.Decimal) string {
	switch {
	case delivered.GreaterThanOrEqual(ordered):
		return FulfillmentFulfilled
	case delivered.GreaterThan(decimal.Zero):
		return FulfillmentPartial
	default:
		return FulfillmentPending
	}
}
