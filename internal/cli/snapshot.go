package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "snapshot <experiment-id>",
		Short: "Print an experiment with its batches and measurements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			experimentID, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || experimentID == 0 {
				return fmt.Errorf("invalid experiment id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			snapshot, err := services.NewSnapshotService(store).BuildExperimentSnapshot(cmd.Context(), uint(experimentID))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(snapshot)
			}
			_, err = fmt.Fprint(out, renderSnapshot(snapshot))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	return cmd
}

func renderSnapshot(snapshot services.ExperimentSnapshot) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Experiment #%d: %s\n", snapshot.ID, snapshot.Title)
	fmt.Fprintf(&builder, "Status: %s\n", snapshot.Status)
	if snapshot.CurrentTimepoint != "" {
		fmt.Fprintf(&builder, "Current timepoint: %s\n", snapshot.CurrentTimepoint)
	}
	if snapshot.ExternalID != nil {
		fmt.Fprintf(&builder, "eLabFTW experiment: %d\n", *snapshot.ExternalID)
	}
	if notes := strings.TrimSpace(snapshot.Notes); notes != "" {
		fmt.Fprintf(&builder, "Notes: %s\n", notes)
	}
	builder.WriteString("\n")

	batchRows := make([][]string, 0, len(snapshot.Batches))
	measurementRows := make([][]string, 0)
	for _, batch := range snapshot.Batches {
		batchRows = append(batchRows, []string{
			batch.Name,
			string(batch.Status),
			stringValue(batch.TeaType),
			floatValue(batch.Temperature),
			floatValue(batch.PHValue),
			floatValue(batch.SCOBYWetWeight),
		})
		for _, point := range batch.Timepoints {
			completed := "no"
			if point.Completed {
				completed = "yes"
			}
			measurementRows = append(measurementRows, []string{
				batch.Name,
				point.Name,
				floatValue(point.PHValue),
				stringValue(point.MicroResults),
				stringValue(point.HPLCResults),
				completed,
			})
		}
	}

	builder.WriteString(renderTable(
		[]string{"Batch", "Status", "Tea", "Temp (°C)", "pH", "SCOBY wet (g)"},
		batchRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	builder.WriteString("\n")
	if len(measurementRows) == 0 {
		builder.WriteString("\nNo measurements recorded.\n")
		return builder.String()
	}

	builder.WriteString("\n")
	builder.WriteString(renderTable(
		[]string{"Batch", "Timepoint", "pH", "Micro", "HPLC", "Completed"},
		measurementRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	builder.WriteString("\n")
	return builder.String()
}

func stringValue(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}

func floatValue(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
