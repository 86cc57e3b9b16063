package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/models"
)

// BatchAction is one logged step of the batch workflow.
type BatchAction int

const (
	ActionPreparation BatchAction = iota
	ActionIncubationStart
	ActionIncubationEnd
	ActionSampleSplit
	ActionMicroPlating
	ActionHPLCPrep
	ActionPHMeasurement
	ActionSCOBYWetWeight
	ActionSCOBYDryWeight

	batchActionCount
)

var batchActionCodes = [batchActionCount]string{
	ActionPreparation:     "preparation",
	ActionIncubationStart: "incubation_start",
	ActionIncubationEnd:   "incubation_end",
	ActionSampleSplit:     "sample_split",
	ActionMicroPlating:    "micro_plating",
	ActionHPLCPrep:        "hplc_prep",
	ActionPHMeasurement:   "ph_measurement",
	ActionSCOBYWetWeight:  "scoby_wet_weight",
	ActionSCOBYDryWeight:  "scoby_dry_weight",
}

var batchActionStatuses = [batchActionCount]models.BatchStatus{
	ActionPreparation:     models.BatchPrepared,
	ActionIncubationStart: models.BatchIncubating,
	ActionIncubationEnd:   models.BatchSampling,
	ActionSampleSplit:     models.BatchAnalysisPending,
	ActionMicroPlating:    models.BatchMicroPlated,
	ActionHPLCPrep:        models.BatchHPLCPrepped,
	ActionPHMeasurement:   models.BatchPHMeasured,
	ActionSCOBYWetWeight:  models.BatchSCOBYWeighed,
	ActionSCOBYDryWeight:  models.BatchCompleted,
}

func BatchActions() []BatchAction {
	actions := make([]BatchAction, 0, batchActionCount)
	for action := BatchAction(0); action < batchActionCount; action++ {
		actions = append(actions, action)
	}
	return actions
}

func (action BatchAction) Valid() bool {
	return action >= 0 && action < batchActionCount
}

func (action BatchAction) String() string {
	if !action.Valid() {
		return "unknown"
	}
	return batchActionCodes[action]
}

func ParseBatchAction(raw string) (BatchAction, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	for action, candidate := range batchActionCodes {
		if candidate == code {
			return BatchAction(action), nil
		}
	}
	return 0, validationError("unknown batch action %q", raw)
}

// StatusForAction returns the batch status an action moves the batch to.
func StatusForAction(action BatchAction) models.BatchStatus {
	if !action.Valid() {
		return ""
	}
	return batchActionStatuses[action]
}

// timestampField points at the batch timestamp the action stamps.
func timestampField(batch *models.Batch, action BatchAction) **time.Time {
	switch action {
	case ActionPreparation:
		return &batch.PreparationTime
	case ActionIncubationStart:
		return &batch.IncubationStartTime
	case ActionIncubationEnd:
		return &batch.IncubationEndTime
	case ActionSampleSplit:
		return &batch.SampleSplitTime
	case ActionMicroPlating:
		return &batch.MicroPlatingTime
	case ActionHPLCPrep:
		return &batch.HPLCPrepTime
	case ActionPHMeasurement:
		return &batch.PHMeasurementTime
	case ActionSCOBYWetWeight:
		return &batch.SCOBYWetWeightTime
	case ActionSCOBYDryWeight:
		return &batch.SCOBYDryWeightTime
	default:
		return nil
	}
}

// DeriveExperimentStatus applies the rules in priority order: no batches,
// all completed, any setup, any incubating or sampling, otherwise analysis.
// The result does not depend on the order of statuses.
func DeriveExperimentStatus(statuses []models.BatchStatus) models.ExperimentStatus {
	if len(statuses) == 0 {
		return models.ExperimentPlanning
	}

	allCompleted := true
	anySetup := false
	anyActive := false
	for _, status := range statuses {
		switch status {
		case models.BatchCompleted:
		case models.BatchSetup:
			anySetup = true
		case models.BatchIncubating, models.BatchSampling:
			anyActive = true
		}
		if status != models.BatchCompleted {
			allCompleted = false
		}
	}

	switch {
	case allCompleted:
		return models.ExperimentCompleted
	case anySetup:
		return models.ExperimentPlanning
	case anyActive:
		return models.ExperimentRunning
	default:
		return models.ExperimentAnalysis
	}
}
