// Package ordering computes the display order of a task collection.
package ordering

import (
	"cmp"
	"slices"
	"time"

	"github.com/fastygo/todolist/domain"
)

// Sort returns a new slice holding tasks in display order: flagged first, then
// by status rank, then by due date ascending with undated tasks last.
//
// The sort is stable, so tasks equal on all three keys keep their relative
// input order. The input slice is never modified.
func Sort(tasks []domain.Task) []domain.Task {
	out := domain.CloneTasks(tasks)
	slices.SortStableFunc(out, Compare)
	return out
}

// Compare orders two tasks by flag, status rank and due date.
func Compare(a, b domain.Task) int {
	if a.Flagged != b.Flagged {
		if a.Flagged {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Status.Rank(), b.Status.Rank()); c != 0 {
		return c
	}
	return compareDue(a.DueDate, b.DueDate)
}

func compareDue(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	ta, errA := time.Parse(domain.DueDateLayout, *a)
	tb, errB := time.Parse(domain.DueDateLayout, *b)
	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}
