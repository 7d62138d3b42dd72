package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todolist/api/transport"
	"github.com/fastygo/todolist/domain"
)

func ptr(s string) *string { return &s }

func TestTodoRequest_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		req     transport.TodoRequest
		text    string
		due     *string
		invalid bool
	}{
		{name: "trims text", req: transport.TodoRequest{Text: "  milk \n"}, text: "milk"},
		{name: "keeps date", req: transport.TodoRequest{Text: "x", DueDate: ptr("2025-02-28")}, text: "x", due: ptr("2025-02-28")},
		{name: "empty date is none", req: transport.TodoRequest{Text: "x", DueDate: ptr("")}, text: "x"},
		{name: "blank text", req: transport.TodoRequest{Text: " \t"}, invalid: true},
		{name: "impossible date", req: transport.TodoRequest{Text: "x", DueDate: ptr("2025-02-30")}, invalid: true},
		{name: "wrong layout", req: transport.TodoRequest{Text: "x", DueDate: ptr("2025/02/01")}, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, due, err := tt.req.Normalize()
			if tt.invalid {
				require.Error(t, err)
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.due, due)
		})
	}
}
