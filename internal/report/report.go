package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/models"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

//go:embed templates/experiment.html.tmpl
var templateFS embed.FS

var experimentTemplate = template.Must(
	template.New("experiment.html.tmpl").Funcs(template.FuncMap{
		"quantity":  quantity,
		"text":      text,
		"number":    number,
		"timestamp": timestamp,
	}).ParseFS(templateFS, "templates/experiment.html.tmpl"),
)

var timelineStages = []string{"Preparation", "Incubation Start", "Sampling", "Analysis", "Completion"}

type timelineStage struct {
	Index int
	Label string
	Class string
	Last  bool
}

type workflowStep struct {
	Label string
	At    *time.Time
}

type batchView struct {
	services.BatchSnapshot
	Steps []workflowStep
}

type reportView struct {
	Title           string
	BatchCount      int
	Batches         []batchView
	Timeline        []timelineStage
	HasMeasurements bool
	HasNotes        bool
}

// Render produces the HTML experiment report. It reads nothing but its
// arguments.
func Render(title string, batches []services.BatchSnapshot) (string, error) {
	view := reportView{
		Title:      title,
		BatchCount: len(batches),
		Batches:    make([]batchView, 0, len(batches)),
		Timeline:   buildTimeline(batches),
	}
	for _, batch := range batches {
		view.Batches = append(view.Batches, batchView{BatchSnapshot: batch, Steps: workflowSteps(batch)})
		if hasResults(batch) || len(batch.Timepoints) > 0 {
			view.HasMeasurements = true
		}
		if strings.TrimSpace(batch.Notes) != "" {
			view.HasNotes = true
		}
	}

	var out bytes.Buffer
	if err := experimentTemplate.Execute(&out, view); err != nil {
		return "", fmt.Errorf("render experiment report: %w", err)
	}
	return out.String(), nil
}

func hasResults(batch services.BatchSnapshot) bool {
	return batch.PHValue != nil || batch.MicroResults != nil || batch.HPLCResults != nil || batch.SCOBYWetWeight != nil
}

// buildTimeline marks how far the batches as a whole have progressed.
func buildTimeline(batches []services.BatchSnapshot) []timelineStage {
	current := 0
	anyStatus := func(statuses ...models.BatchStatus) bool {
		for _, batch := range batches {
			for _, status := range statuses {
				if batch.Status == status {
					return true
				}
			}
		}
		return false
	}
	anyResults := false
	for _, batch := range batches {
		anyResults = anyResults || hasResults(batch)
	}

	switch {
	case anyStatus(models.BatchCompleted):
		current = 4
	case anyResults:
		current = 3
	case anyStatus(models.BatchSampling, models.BatchAnalysisPending):
		current = 2
	case anyStatus(models.BatchIncubating):
		current = 1
	}

	stages := make([]timelineStage, 0, len(timelineStages))
	for index, label := range timelineStages {
		class := ""
		switch {
		case index < current:
			class = "completed"
		case index == current:
			class = "current"
		}
		stages = append(stages, timelineStage{
			Index: index + 1,
			Label: label,
			Class: class,
			Last:  index == len(timelineStages)-1,
		})
	}
	return stages
}

func workflowSteps(batch services.BatchSnapshot) []workflowStep {
	return []workflowStep{
		{"Preparation", batch.PreparationTime},
		{"Incubation start", batch.IncubationStartTime},
		{"Incubation end", batch.IncubationEndTime},
		{"Sample split", batch.SampleSplitTime},
		{"Micro plating", batch.MicroPlatingTime},
		{"HPLC prep", batch.HPLCPrepTime},
		{"pH measurement", batch.PHMeasurementTime},
		{"SCOBY wet weight", batch.SCOBYWetWeightTime},
		{"SCOBY dry weight", batch.SCOBYDryWeightTime},
	}
}

func quantity(value *float64, unit string) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64) + " " + unit
}

func number(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func text(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func timestamp(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04 UTC")
}
