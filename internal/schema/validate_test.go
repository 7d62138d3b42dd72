package schema

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todolist/domain"
)

func validTask(id int) map[string]any {
	return map[string]any{
		"id":      json.Number(strconv.Itoa(id)),
		"text":    "task",
		"status":  "todo",
		"dueDate": nil,
		"tags":    []any{},
		"flagged": false,
	}
}

func TestValidateTodos_AcceptsCurrentShape(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateTodos([]any{validTask(1), validTask(2)}))
	require.NoError(t, ValidateTodos([]any{}))
}

func TestValidateTodos_OneBadRecordFailsAll(t *testing.T) {
	t.Parallel()

	bad := validTask(3)
	delete(bad, "status")

	err := ValidateTodos([]any{validTask(1), validTask(2), bad})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "$[2]", ve.Path)
}

func TestValidateTodos_RejectsWrongTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		value any
	}{
		{name: "string id", field: "id", value: "1"},
		{name: "numeric text", field: "text", value: json.Number("4")},
		{name: "unknown status", field: "status", value: "archived"},
		{name: "numeric due date", field: "dueDate", value: json.Number("20240101")},
		{name: "tags not a list", field: "tags", value: "work"},
		{name: "non-string tag", field: "tags", value: []any{"ok", json.Number("1")}},
		{name: "string flag", field: "flagged", value: "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := validTask(1)
			rec[tt.field] = tt.value

			err := ValidateTodos([]any{rec})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestValidateTodos_RejectsNonSequence(t *testing.T) {
	t.Parallel()

	err := ValidateTodos(map[string]any{"todos": []any{}})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "$", ve.Path)
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(map[string]any{"theme": "dark"}))
	require.ErrorIs(t, ValidateSettings(map[string]any{"theme": "sepia"}), domain.ErrValidation)
	require.ErrorIs(t, ValidateSettings(map[string]any{}), domain.ErrValidation)
}

func TestDecodeTodos_MigratesBeforeValidating(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`[
		{"id": 1, "text": "Old Todo 1", "completed": false},
		{"id": 1717171717171, "text": "Old Todo 2", "completed": true, "dueDate": "2025-12-31", "tags": ["work", "urgent"]}
	]`)

	got, err := DecodeTodos(raw)
	require.NoError(t, err)

	due := "2025-12-31"
	want := []domain.Task{
		{ID: 1, Text: "Old Todo 1", Status: domain.StatusTodo, Tags: []string{}},
		{ID: 1717171717171, Text: "Old Todo 2", Status: domain.StatusDone, DueDate: &due, Tags: []string{"work", "urgent"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DecodeTodos (-want +got):\n%s", diff)
	}
}

func TestDecodeTodos_CorruptInput(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"malformed json":    `[{"id": 1,`,
		"missing text":      `[{"id": 1}]`,
		"not a list":        `{"id": 1, "text": "a"}`,
		"fractional id":     `[{"id": 1.5, "text": "a", "status": "todo", "dueDate": null, "tags": []}]`,
		"empty raw message": ``,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeTodos(json.RawMessage(raw))
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDecodeSettings(t *testing.T) {
	t.Parallel()

	got, err := DecodeSettings(json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{Theme: domain.ThemeDark}, got)

	_, err = DecodeSettings(json.RawMessage(`{"theme":"neon"}`))
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPointerToPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$", pointerToPath(""))
	assert.Equal(t, "$[0].status", pointerToPath("/0/status"))
	assert.Equal(t, "$[12].tags[1]", pointerToPath("/12/tags/1"))
	assert.Equal(t, "$.a/b", pointerToPath("/a~1b"))
}
