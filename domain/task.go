package domain

import "slices"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusInProgress Status = "inProgress"
	StatusTodo       Status = "todo"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Statuses lists every recognised status in display rank order.
var Statuses = []Status{StatusInProgress, StatusTodo, StatusBlocked, StatusDone}

// Valid reports whether s is one of the four recognised statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Rank returns the display rank of s (inProgress first). Unknown statuses
// rank after done.
func (s Status) Rank() int {
	if i := slices.Index(Statuses, s); i >= 0 {
		return i + 1
	}
	return len(Statuses) + 1
}

// Task represents a single to-do item.
type Task struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Status  Status   `json:"status"`
	DueDate *string  `json:"dueDate"`
	Tags    []string `json:"tags"`
	Flagged bool     `json:"flagged"`
}

// DueDateLayout is the calendar date format used for due dates.
const DueDateLayout = "2006-01-02"

// Clone returns a deep copy so callers never share the tag slice or due date
// pointer with the owner of t.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	out.Tags = CloneTags(t.Tags)
	return out
}

// CloneTags copies tags verbatim; duplicates and case are preserved. A nil
// input yields an empty, non-nil slice so it encodes as [].
func CloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
