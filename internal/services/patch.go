package services

import (
	"bytes"
	"encoding/json"
	"io"
)

// Patch is one field of a partial update. A zero Patch is absent; a present
// Patch with a nil Value clears the field.
type Patch[T any] struct {
	Present bool
	Value   *T
}

func Set[T any](value T) Patch[T] {
	return Patch[T]{Present: true, Value: &value}
}

func Clear[T any]() Patch[T] {
	return Patch[T]{Present: true}
}

func (patch *Patch[T]) UnmarshalJSON(data []byte) error {
	patch.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		patch.Value = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	patch.Value = &value
	return nil
}

func (patch Patch[T]) MarshalJSON() ([]byte, error) {
	if !patch.Present || patch.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*patch.Value)
}

// applyTo writes a present patch into target.
func (patch Patch[T]) applyTo(target **T) {
	if !patch.Present {
		return
	}
	if patch.Value == nil {
		*target = nil
		return
	}
	value := *patch.Value
	*target = &value
}

// DecodePatch decodes a JSON partial update, rejecting unknown keys.
func DecodePatch(body []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validationError("invalid payload: %v", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return validationError("invalid payload: trailing data")
	}
	return nil
}
