package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ubicación.
const (
	LocationTypeWarehouse = "Warehouse"
	LocationTypeYard      = "Yard"
	LocationTypeSilo      = "Silo"
	LocationTypeContainer = "Container"
)

// StorageLocation es una bodega, patio, silo o contenedor de la planta.
// Un Silo/Container tiene como máximo un ítem de cemento (CementItemID) y ese ítem
// no se comparte con otro silo: cada silo se mide y descuenta por separado.
type StorageLocation struct {
	ID           string
	CompanyID    string
	Name         string
	Type         string
	Capacity     decimal.Decimal
	CementItemID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HoldsCement informa si la ubicación admite un ítem de cemento asignado.
func (l *StorageLocation) HoldsCement() bool {
	return l.Type == LocationTypeSilo || l.Type == LocationTypeContainer
}

// ValidLocationType valida el tipo de ubicación.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeYard, LocationTypeSilo, LocationTypeContainer:
		return true
	}
	return false
}
