package scheduler

import (
	"cmp"
	"slices"

	"github.com/javiermolinar/stint/internal/task"
)

// desiredDay returns the canonical requested day of t. A missing or
// malformed date counts as no date.
func desiredDay(t task.Task) (Day, bool) {
	if !t.HasDesiredDate() {
		return "", false
	}
	return ParseDay(t.DesiredDate)
}

// compareTasks orders tasks for placement: dated tasks first, earlier dates
// first, then higher importance, then longer duration (first-fit-decreasing).
func compareTasks(a, b task.Task) int {
	da, aDated := desiredDay(a)
	db, bDated := desiredDay(b)

	switch {
	case aDated && !bDated:
		return -1
	case !aDated && bDated:
		return 1
	case aDated && bDated && da != db:
		return cmp.Compare(da, db)
	}

	if a.Importance != b.Importance {
		return cmp.Compare(b.Importance, a.Importance)
	}
	return cmp.Compare(b.DurationMinutes, a.DurationMinutes)
}

// OrderTasks returns a copy of tasks in placement order. Equal keys keep
// their input order.
func OrderTasks(tasks []task.Task) []task.Task {
	ordered := slices.Clone(tasks)
	slices.SortStableFunc(ordered, compareTasks)
	return ordered
}
