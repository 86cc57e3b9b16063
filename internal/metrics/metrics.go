package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kombucha_eln"

// Workflow counts notebook workflow events on its own registry.
type Workflow struct {
	registry     *prometheus.Registry
	measurements prometheus.Counter
	actions      *prometheus.CounterVec
	advances     prometheus.Counter
	syncs        *prometheus.CounterVec
}

func NewWorkflow() *Workflow {
	workflow := &Workflow{
		registry: prometheus.NewRegistry(),
		measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_recorded_total",
			Help:      "Measurement writes accepted.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_actions_total",
			Help:      "Batch workflow actions logged, by action.",
		}, []string{"action"}),
		advances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timepoint_advances_total",
			Help:      "Experiments moved to their next timepoint.",
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elabftw_syncs_total",
			Help:      "eLabFTW sync attempts, by outcome.",
		}, []string{"outcome"}),
	}

	workflow.registry.MustRegister(
		workflow.measurements,
		workflow.actions,
		workflow.advances,
		workflow.syncs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return workflow
}

func (workflow *Workflow) MeasurementRecorded() {
	workflow.measurements.Inc()
}

func (workflow *Workflow) BatchActionLogged(action string) {
	workflow.actions.WithLabelValues(action).Inc()
}

func (workflow *Workflow) TimepointAdvanced() {
	workflow.advances.Inc()
}

func (workflow *Workflow) SyncFinished(outcome string) {
	workflow.syncs.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (workflow *Workflow) Handler() http.Handler {
	return promhttp.HandlerFor(workflow.registry, promhttp.HandlerOpts{Registry: workflow.registry})
}
