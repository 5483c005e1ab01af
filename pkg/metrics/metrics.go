package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	agentTestbed = "agent_testbed"

	// Workflow metrics
	generationJobsTotal    = "generation_jobs_total"
	simulationTurnsTotal   = "simulation_turns_total"
	ActiveSimulationsCount = "active_simulations_count"

	// Labels
	jobStateLabel = "state"
)

/**
* Metrics definition
**/
var generationJobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: agentTestbed,
		Name:      generationJobsTotal,
		Help:      "number of generation jobs by terminal state",
	},
	[]string{jobStateLabel},
)

var simulationTurnsTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: agentTestbed,
		Name:      simulationTurnsTotal,
		Help:      "number of simulation turns executed",
	},
)

var activeSimulationsMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: agentTestbed,
		Name:      ActiveSimulationsCount,
		Help:      "number of simulations currently running",
	},
)

func IncreaseGenerationJobsTotalMetric(state string) {
	generationJobsTotalMetric.With(prometheus.Labels{jobStateLabel: state}).Inc()
}

func IncreaseSimulationTurnsTotalMetric() {
	simulationTurnsTotalMetric.Inc()
}

func UpdateActiveSimulationsMetric(delta int) {
	activeSimulationsMetric.Add(float64(delta))
}

func RegisterWorkflowMetrics() {
	prometheus.MustRegister(
		generationJobsTotalMetric,
		simulationTurnsTotalMetric,
		activeSimulationsMetric,
	)
}
