package ports

import "time"

// Resultados de una ejecución de producción para métricas.
const (
	OutcomeCompleted    = "completed"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeConflict     = "conflict"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

// ProductionMetrics registra resultados del motor de producción.
type ProductionMetrics interface {
	ObserveRun(outcome string, elapsed time.Duration)
	IncConflictRetry()
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ObserveRun(string, time.Duration) {}
func (NopMetrics) IncConflictRetry()                {}
