package timeparse

import (
	"fmt"
	"strings"
)

// Clock is a wall-clock time of day with no date component.
type Clock struct {
	Hour   int // 0-23
	Minute int // 0-59
}

func (c Clock) valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses "3pm", "11:30am" or 24-hour "14:00".
//
// For 12-hour input, pm adds 12 unless the hour is 12, and 12am is midnight.
// Readings outside 00:00-23:59 after conversion are rejected, so "13pm" and
// "3:70pm" do not parse.
func ParseClock(s string) (Clock, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		pm := strings.HasSuffix(s, "pm")
		if hour, minute, ok := hourMinute(s[:len(s)-2]); ok {
			switch {
			case pm && hour != 12:
				hour += 12
			case !pm && hour == 12:
				hour = 0
			}
			c := Clock{Hour: hour, Minute: minute}
			return c, c.valid()
		}
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return Clock{}, false
		}
		hour, ok := parseUint(parts[0])
		if !ok {
			return Clock{}, false
		}
		minute, ok := parseUint(parts[1])
		if !ok {
			return Clock{}, false
		}
		c := Clock{Hour: hour, Minute: minute}
		return c, c.valid()
	}

	return Clock{}, false
}

// hourMinute splits "H" or "H:MM" into its numeric parts.
func hourMinute(s string) (int, int, bool) {
	if !strings.Contains(s, ":") {
		hour, ok := parseUint(s)
		return hour, 0, ok
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, ok := parseUint(parts[0])
	if !ok {
		return 0, 0, false
	}
	minute, ok := parseUint(parts[1])
	if !ok {
		return 0, 0, false
	}
	return hour, minute, true
}
