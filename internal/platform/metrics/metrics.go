package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	EmissionsRecorded  *prometheus.CounterVec
	EmissionsCO2e      *prometheus.CounterVec
	CalculationErrors  prometheus.Counter
	LevyAssessments    prometheus.Counter
	FactorCacheMisses  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EmissionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonledger_emissions_recorded_total",
			Help: "Total number of emission records written to the ledger",
		}, []string{"scope"}),
		EmissionsCO2e: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carbonledger_emissions_co2e_tonnes_total",
			Help: "Cumulative tonnes of CO2e recorded, by scope",
		}, []string{"scope"}),
		CalculationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carbonledger_calculation_errors_total",
			Help: "Total number of failed emission calculations",
		}),
		LevyAssessments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carbonledger_levy_assessments_total",
			Help: "Total number of border levy assessments computed",
		}),
		FactorCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carbonledger_factor_lookup_misses_total",
			Help: "Total number of factor lookups that found no matching factor",
		}),
	}
}

// RecordEmission increments the record counter and CO2e total for a scope.
func (m *Metrics) RecordEmission(scope string, co2e float64) {
	m.EmissionsRecorded.WithLabelValues(scope).Inc()
	if co2e > 0 {
		m.EmissionsCO2e.WithLabelValues(scope).Add(co2e)
	}
}
