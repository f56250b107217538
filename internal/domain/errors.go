package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrPersistence         = errors.New("falla de persistencia")
)

// Variantes de ErrInvalidInput con mensaje específico.
var (
	ErrCapacityExceeded  = fmt.Errorf("%w: capacidad máxima excedida", ErrInvalidInput)
	ErrRecipeSuperseded  = fmt.Errorf("%w: la receta tiene una versión más reciente", ErrInvalidInput)
	ErrSiloWithoutCement = fmt.Errorf("%w: el silo no tiene cemento asignado", ErrInvalidInput)
	ErrSiloOccupied      = fmt.Errorf("%w: el silo o el cemento ya están asignados", ErrInvalidInput)
	ErrUnitMismatch      = fmt.Errorf("%w: la unidad de la receta no es compatible con la del material", ErrInvalidInput)
)

// InsufficientStockError detalla el ingrediente que no pasó el control de suficiencia.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	Ingredient      string
	InventoryItemID string
	Unit            string
	Required        decimal.Decimal
	Available       decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: requerido %s %s, disponible %s %s",
		e.Ingredient, e.Required.String(), e.Unit, e.Available.String(), e.Unit)
}

// Is permite comparar contra ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError asocia un error de entrada a un campo concreto.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap devuelve ErrInvalidInput para que errors.Is funcione con el sentinel.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
