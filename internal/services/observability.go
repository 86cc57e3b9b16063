package services

import "github.com/terraincognita07/kombucha-eln/internal/logging"

// WorkflowMetrics receives workflow events. internal/metrics provides the
// Prometheus implementation.
type WorkflowMetrics interface {
	MeasurementRecorded()
	BatchActionLogged(action string)
	TimepointAdvanced()
	SyncFinished(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) MeasurementRecorded()     {}
func (nopMetrics) BatchActionLogged(string) {}
func (nopMetrics) TimepointAdvanced()       {}
func (nopMetrics) SyncFinished(string)      {}

func metricsOrNop(metrics WorkflowMetrics) WorkflowMetrics {
	if metrics == nil {
		return nopMetrics{}
	}
	return metrics
}

func loggerOrNop(logger *logging.Logger) *logging.Logger {
	if logger == nil {
		return logging.Nop()
	}
	return logger
}
