package meeting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a minute-resolution time of day, independent of any date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: hour must be 0-23", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: minute must be 00-59", s)
	}

	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustClock parses a "HH:MM" string and panics on malformed input.
// Intended for compile-time constants and test fixtures.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the number of minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) Before(o ClockTime) bool {
	return c.Minutes() < o.Minutes()
}

func (c ClockTime) After(o ClockTime) bool {
	return c.Minutes() > o.Minutes()
}

// Add shifts the clock time by the given number of minutes, clamping the
// result to the same day.
func (c ClockTime) Add(minutes int) ClockTime {
	total := c.Minutes() + minutes
	if total < 0 {
		total = 0
	}
	if total > 23*60+59 {
		total = 23*60 + 59
	}
	return ClockTime{Hour: total / 60, Minute: total % 60}
}

// On anchors the clock time to the date of the given day.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// ClockOf extracts the time-of-day component of a timestamp.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}
