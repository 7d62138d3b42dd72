// Package schema upgrades, validates and decodes stored task data.
//
// Loading is a three stage pipeline kept as separate functions so each can be
// tested on its own: MigrateRecords brings legacy records up to the current
// shape, ValidateTodos checks the result against the embedded JSON schema and
// DecodeTodos ties both together and produces typed tasks.
package schema

import "github.com/fastygo/todolist/domain"

// Field names of a stored task record.
const (
	fieldID        = "id"
	fieldText      = "text"
	fieldStatus    = "status"
	fieldDueDate   = "dueDate"
	fieldTags      = "tags"
	fieldFlagged   = "flagged"
	fieldCompleted = "completed"
)

// MigrateRecord returns a copy of rec upgraded to the current task shape.
//
// Every rule is keyed off the presence of a field in the input, so the rules
// commute and running the migration twice is a no-op. Records without id or
// text come out incomplete and are left for the validator to reject.
func MigrateRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec)+4)
	for k, v := range rec {
		out[k] = v
	}

	if _, ok := rec[fieldDueDate]; !ok {
		out[fieldDueDate] = nil
	}
	if _, ok := rec[fieldTags]; !ok {
		out[fieldTags] = []any{}
	}
	if completed, ok := rec[fieldCompleted].(bool); ok {
		if _, hasStatus := rec[fieldStatus]; !hasStatus {
			if completed {
				out[fieldStatus] = string(domain.StatusDone)
			} else {
				out[fieldStatus] = string(domain.StatusTodo)
			}
		}
		delete(out, fieldCompleted)
	}
	if _, ok := rec[fieldFlagged]; !ok {
		out[fieldFlagged] = false
	}
	return out
}

// MigrateRecords applies MigrateRecord to every object in a decoded
// collection. Anything that is not a sequence, and any element that is not an
// object, is passed through untouched.
func MigrateRecords(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(items))
	for i, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out[i] = MigrateRecord(rec)
			continue
		}
		out[i] = item
	}
	return out
}
