// Package dateutil parses user and LLM supplied dates into canonical days.
package dateutil

import (
	"errors"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"

	"github.com/javiermolinar/stint/internal/task"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrDateInPast         = errors.New("cannot schedule in the past")
	ErrUnrecognizedDate   = errors.New("unrecognized date")
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// dayOffsets are the keywords that resolve to a fixed number of days ahead.
var dayOffsets = map[string]int{
	"":          0,
	"today":     0,
	"tomorrow":  1,
	"next-week": 7,
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses an inclusive range. An empty start means today and an
// empty end means the start day.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		if end, err = ParseDate(endDate); err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}
	return &DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days in the range, both ends included.
func (r *DateRange) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// ParseDate parses YYYY-MM-DD at local midnight. Empty means today.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return task.TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation(task.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseRelativeDate resolves a day against relativeTo. Accepted, case-insensitive:
//   - "", "today", "tomorrow", "next-week"
//   - a weekday name, meaning its next occurrence (never today)
//   - "next-<weekday>" or "next <weekday>", same as the bare weekday
//   - YYYY-MM-DD, which must not be before relativeTo's day
//
// The result is midnight in relativeTo's location.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := task.TruncateToDay(relativeTo)
	input := strings.Join(strings.Fields(strings.ToLower(s)), "-")

	if offset, ok := dayOffsets[input]; ok {
		return today.AddDate(0, 0, offset), nil
	}

	name := strings.TrimPrefix(input, "next-")
	if wd, ok := weekdays[name]; ok {
		return nextWeekday(today, wd), nil
	}
	if name != input {
		return time.Time{}, ErrInvalidDateFormat
	}

	day, err := time.ParseInLocation(task.DateLayout, input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	if day.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return day, nil
}

// NormalizeDate converts a requested date into the canonical YYYY-MM-DD form.
// It tries, in order: YYYY-MM-DD, RFC 3339 / ISO timestamps (keeping the date
// as written), the keywords of ParseRelativeDate, and loose natural language
// resolved forward from ref ("december 25th", "in 3 days"). Empty stays empty.
func NormalizeDate(s string, ref time.Time) (string, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return "", nil
	}

	if _, err := time.Parse(task.DateLayout, input); err == nil {
		return input, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.Format(task.DateLayout), nil
	}
	if datePart, _, ok := strings.Cut(input, "T"); ok {
		if _, err := time.Parse(task.DateLayout, datePart); err == nil {
			return datePart, nil
		}
	}

	if t, err := ParseRelativeDate(input, ref); err == nil {
		return t.Format(task.DateLayout), nil
	}

	t, err := naturaldate.Parse(input, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil || t.Equal(ref) {
		return "", ErrUnrecognizedDate
	}
	return t.In(ref.Location()).Format(task.DateLayout), nil
}

// nextWeekday returns the first day after today falling on target.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}
