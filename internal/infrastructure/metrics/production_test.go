package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Concreto-api/internal/application/ports"
	"github.com/jhoicas/Concreto-api/internal/infrastructure/metrics"
)

func TestProduction_CuentaPorResultado(t *testing.T) {
	m := metrics.NewProduction("concreto")
	m.ObserveRun(ports.OutcomeCompleted, 10*time.Millisecond)
	m.ObserveRun(ports.OutcomeCompleted, 20*time.Millisecond)
	m.ObserveRun(ports.OutcomeInsufficient, time.Millisecond)
	m.IncConflictRetry()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var retries float64
	for _, mf := range families {
		switch mf.GetName() {
		case "concreto_production_runs_total":
			for _, s := range mf.GetMetric() {
				for _, l := range s.GetLabel() {
					if l.GetName() == "outcome" {
						counts[l.GetValue()] = s.GetCounter().GetValue()
					}
				}
			}
		case "concreto_production_conflict_retries_total":
			retries = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts[ports.OutcomeCompleted])
	assert.Equal(t, 1.0, counts[ports.OutcomeInsufficient])
	assert.Equal(t, 1.0, retries)
}
