package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fastygo/todolist/domain"
)

// DecodeTodos migrates, validates and decodes a stored task collection.
// Migration always runs first because validation expects the current shape.
func DecodeTodos(raw json.RawMessage) ([]domain.Task, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	migrated := MigrateRecords(value)
	if err := ValidateTodos(migrated); err != nil {
		return nil, err
	}

	var tasks []domain.Task
	if err := remarshal(migrated, &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].Tags == nil {
			tasks[i].Tags = []string{}
		}
	}
	return tasks, nil
}

// DecodeSettings validates and decodes stored settings.
func DecodeSettings(raw json.RawMessage) (domain.Settings, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return domain.Settings{}, err
	}
	if err := ValidateSettings(value); err != nil {
		return domain.Settings{}, err
	}

	var settings domain.Settings
	if err := remarshal(value, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// decodeValue parses raw JSON into untyped values. Numbers stay json.Number so
// large millisecond ids survive without float rounding.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ValidationError{Path: "$", Message: "value is missing"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ValidationError{Path: "$", Message: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return value, nil
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return &ValidationError{Path: "$", Message: err.Error()}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ValidationError{Path: "$", Message: err.Error()}
	}
	return nil
}
