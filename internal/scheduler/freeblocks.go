package scheduler

import (
	"slices"
	"time"
)

// Horizon returns the consecutive day keys starting at the base date.
func (e *Engine) Horizon() []Day {
	days := make([]Day, 0, e.settings.DaysToSchedule)
	for i := range e.settings.DaysToSchedule {
		days = append(days, DayOf(e.settings.BaseDate.AddDate(0, 0, i)))
	}
	return days
}

// FreeBlocks computes the free intervals of every horizon day.
// The returned map is fresh on every call and owned by the caller.
func (e *Engine) FreeBlocks() map[Day][]*FreeBlock {
	now := e.now()
	base := e.settings.BaseDate

	blocks := make(map[Day][]*FreeBlock, e.settings.DaysToSchedule)
	for i := range e.settings.DaysToSchedule {
		date := base.AddDate(0, 0, i)
		blocks[DayOf(date)] = e.dayBlocks(date, now)
	}
	return blocks
}

// dayBlocks walks the sorted constraints of one day and emits the gaps
// between them inside the work window.
func (e *Engine) dayBlocks(date, now time.Time) []*FreeBlock {
	dayStart := atMinute(date, e.workStart)
	dayEnd := atMinute(date, e.workEnd)

	if DayOf(now.In(date.Location())) == DayOf(date) && now.After(dayStart) {
		dayStart = now
		if now.After(dayEnd) {
			dayStart = dayEnd
		}
	}

	dayConstraints := e.constraintsOn(date)

	var blocks []*FreeBlock
	cursor := dayStart
	for _, c := range dayConstraints {
		// Outside the window entirely.
		if !c.Start.Before(dayEnd) || !c.End.After(dayStart) {
			continue
		}
		if c.Start.After(cursor) {
			if minutesBetween(cursor, c.Start) > 0 {
				blocks = append(blocks, newFreeBlock(cursor, c.Start))
			}
		}
		if c.End.After(cursor) {
			cursor = c.End
		}
	}

	if cursor.Before(dayEnd) && minutesBetween(cursor, dayEnd) > 0 {
		blocks = append(blocks, newFreeBlock(cursor, dayEnd))
	}

	return blocks
}

// constraintsOn returns the constraints starting on date, sorted by start.
func (e *Engine) constraintsOn(date time.Time) []Constraint {
	key := DayOf(date)
	loc := date.Location()

	var out []Constraint
	for _, c := range e.constraints {
		if DayOf(c.Start.In(loc)) == key {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Constraint) int {
		return a.Start.Compare(b.Start)
	})
	return out
}

// atMinute returns the instant minutes after midnight on date's calendar day.
func atMinute(date time.Time, minutes int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location())
}
