package services

import (
	"errors"
	"testing"
)

func TestDecodePatchDistinguishesAbsentNullAndValue(t *testing.T) {
	var patch MeasurementPatch
	if err := DecodePatch([]byte(`{"ph_value": 3.4, "notes": null}`), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}

	if !patch.PHValue.Present || patch.PHValue.Value == nil || *patch.PHValue.Value != 3.4 {
		t.Fatalf("expected ph_value to be set, got %+v", patch.PHValue)
	}
	if !patch.Notes.Present || patch.Notes.Value != nil {
		t.Fatalf("expected notes to be cleared, got %+v", patch.Notes)
	}
	if patch.MicroResults.Present {
		t.Fatalf("expected micro_results to be absent")
	}
}

func TestDecodePatchRejectsUnknownFields(t *testing.T) {
	var patch BatchPatch
	err := DecodePatch([]byte(`{"name": "A", "colour": "amber"}`), &patch)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodePatchRejectsTrailingData(t *testing.T) {
	var patch ExperimentPatch
	err := DecodePatch([]byte(`{"title": "A"} {"title": "B"}`), &patch)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPatchApplyTo(t *testing.T) {
	original := 1.5
	target := &original

	Patch[float64]{}.applyTo(&target)
	if target == nil || *target != 1.5 {
		t.Fatalf("absent patch must not change the target")
	}

	Set(2.5).applyTo(&target)
	if target == nil || *target != 2.5 {
		t.Fatalf("expected 2.5, got %v", target)
	}
	if original != 1.5 {
		t.Fatalf("set patch must not write through the old pointer")
	}

	Clear[float64]().applyTo(&target)
	if target != nil {
		t.Fatalf("expected cleared target, got %v", *target)
	}
}

func TestPatchMarshalJSON(t *testing.T) {
	encoded, err := Set("green").MarshalJSON()
	if err != nil || string(encoded) != `"green"` {
		t.Fatalf("unexpected encoding %s, %v", encoded, err)
	}
	encoded, err = Clear[string]().MarshalJSON()
	if err != nil || string(encoded) != "null" {
		t.Fatalf("unexpected encoding %s, %v", encoded, err)
	}
}
