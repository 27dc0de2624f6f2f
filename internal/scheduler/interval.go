package scheduler

import (
	"time"

	"github.com/javiermolinar/stint/internal/task"
)

// Day is a canonical calendar day key in YYYY-MM-DD form.
// Keys sort chronologically as strings.
type Day string

// DayOf returns the day key of t in t's location.
func DayOf(t time.Time) Day {
	return Day(t.Format(task.DateLayout))
}

// ParseDay returns the day key for a canonical YYYY-MM-DD string.
func ParseDay(s string) (Day, bool) {
	if _, err := time.Parse(task.DateLayout, s); err != nil {
		return "", false
	}
	return Day(s), true
}

// Constraint is a fixed busy interval the engine must not schedule over,
// such as an existing appointment.
type Constraint struct {
	Start time.Time
	End   time.Time
	Label string
}

// Minutes returns the constraint length in whole minutes.
func (c Constraint) Minutes() int {
	return minutesBetween(c.Start, c.End)
}

// FreeBlock is a contiguous interval [Start, End) inside one day's work window
// not covered by any constraint. The placer consumes it from the front.
type FreeBlock struct {
	Start            time.Time
	End              time.Time
	RemainingMinutes int
}

func newFreeBlock(start, end time.Time) *FreeBlock {
	return &FreeBlock{
		Start:            start,
		End:              end,
		RemainingMinutes: minutesBetween(start, end),
	}
}

// Fits reports whether the block still has room for the given minutes.
func (b *FreeBlock) Fits(minutes int) bool {
	return b.RemainingMinutes >= minutes
}

// consume takes minutes from the front of the block and returns the used interval.
func (b *FreeBlock) consume(minutes int) (start, end time.Time) {
	start = b.Start
	end = start.Add(time.Duration(minutes) * time.Minute)
	b.Start = end
	b.RemainingMinutes -= minutes
	return start, end
}

// minutesBetween returns the floor of the minutes from start to end, or 0.
func minutesBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}
