package task

import (
	"fmt"
	"time"
)

// ValidateClock checks that s is a valid 24-hour "HH:MM" time of day.
func ValidateClock(s string) error {
	if len(s) != 5 {
		return ErrInvalidTimeFormat
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTimeFormat
	}
	return nil
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if len(t) < 5 {
		return 0
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	return hours*60 + mins
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// At returns the instant at the given "HH:MM" on the calendar day of date.
func At(date time.Time, clock string) (time.Time, error) {
	if err := ValidateClock(clock); err != nil {
		return time.Time{}, fmt.Errorf("%w, got %q", err, clock)
	}
	m := TimeToMinutes(clock)
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location()), nil
}

// OverlapMinutes calculates the overlapping minutes between two time ranges.
// Returns 0 if there is no overlap.
func OverlapMinutes(start1, end1, start2, end2 time.Time) int {
	overlapStart := start1
	if start2.After(overlapStart) {
		overlapStart = start2
	}
	overlapEnd := end1
	if end2.Before(overlapEnd) {
		overlapEnd = end2
	}
	if !overlapEnd.After(overlapStart) {
		return 0
	}
	return int(overlapEnd.Sub(overlapStart) / time.Minute)
}
