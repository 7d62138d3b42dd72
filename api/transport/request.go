package transport

import (
	"strings"
	"time"

	"github.com/fastygo/todolist/domain"
)

// TodoRequest is the body of create and update calls.
type TodoRequest struct {
	Text    string   `json:"text"`
	DueDate *string  `json:"dueDate"`
	Tags    []string `json:"tags"`
}

// Normalize trims the text, maps an empty due date to none and checks both.
// Tags are passed through untouched.
func (r TodoRequest) Normalize() (text string, dueDate *string, err error) {
	text = strings.TrimSpace(r.Text)
	if text == "" {
		return "", nil, domain.NewError(domain.ErrCodeInvalid, "text must not be empty")
	}

	if r.DueDate != nil {
		due := strings.TrimSpace(*r.DueDate)
		if due != "" {
			if _, perr := time.Parse(domain.DueDateLayout, due); perr != nil {
				return "", nil, domain.NewError(domain.ErrCodeInvalid, "dueDate must be YYYY-MM-DD")
			}
			dueDate = &due
		}
	}
	return text, dueDate, nil
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	Status domain.Status `json:"status"`
}

// ThemeRequest is the body of a theme change.
type ThemeRequest struct {
	Theme domain.Theme `json:"theme"`
}
