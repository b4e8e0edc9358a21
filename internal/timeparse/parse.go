// Package timeparse converts casual deadline expressions ("tomorrow 3pm",
// "fri", "in 2 days", "12/25") into absolute timestamps.
//
// Parsing is a pure function of the input and a caller-supplied "now". The
// location of now is treated as the local timezone for every wall-clock time
// the parser constructs.
package timeparse

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Default wall-clock times for inputs that carry no explicit time.
var (
	EndOfDay   = Clock{Hour: 23, Minute: 59}
	StartOfDay = Clock{Hour: 9, Minute: 0}
)

// Grammar is a single input recognizer. Fn receives the trimmed,
// lowercased input and reports whether it owns it.
type Grammar struct {
	Name string
	Fn   func(input string, now time.Time) (time.Time, bool)
}

// Grammars lists every recognizer in priority order. The first grammar that
// matches wins.
var Grammars = []Grammar{
	{Name: "relative", Fn: parseRelative},
	{Name: "today", Fn: parseToday},
	{Name: "today-time", Fn: parseTodayTime},
	{Name: "tomorrow", Fn: parseTomorrow},
	{Name: "tomorrow-time", Fn: parseTomorrowTime},
	{Name: "weekday", Fn: parseWeekday},
	{Name: "clock", Fn: parseBareClock},
	{Name: "short-date", Fn: parseShortDate},
	{Name: "full-date", Fn: parseFullDate},
}

// Match is a successful parse along with the grammar that produced it.
type Match struct {
	Time    time.Time
	Grammar string
}

// Parse resolves input against now. ok is false when no grammar matches.
func Parse(input string, now time.Time) (time.Time, bool) {
	m, ok := MatchInput(input, now)
	return m.Time, ok
}

// MatchInput is Parse, also reporting which grammar owned the input.
func MatchInput(input string, now time.Time) (Match, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return Match{}, false
	}
	for _, g := range Grammars {
		if t, ok := g.Fn(input, now); ok {
			return Match{Time: t, Grammar: g.Name}, true
		}
	}
	return Match{}, false
}

var units = map[string]time.Duration{
	"hour": time.Hour, "hours": time.Hour, "h": time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour, "d": 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour, "w": 7 * 24 * time.Hour,
	"minute": time.Minute, "minutes": time.Minute, "min": time.Minute, "m": time.Minute,
}

// parseRelative handles "in <amount> <unit>".
func parseRelative(input string, now time.Time) (time.Time, bool) {
	rest, ok := strings.CutPrefix(input, "in ")
	if !ok {
		return time.Time{}, false
	}
	parts := strings.Fields(rest)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	amount, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	unit, ok := units[parts[1]]
	if !ok {
		return time.Time{}, false
	}
	limit := int64(math.MaxInt64 / unit)
	if amount > limit || amount < -limit {
		return time.Time{}, false
	}
	return now.Add(time.Duration(amount) * unit), true
}

func parseToday(input string, now time.Time) (time.Time, bool) {
	if input != "today" {
		return time.Time{}, false
	}
	return onDay(now, 0, EndOfDay)
}

func parseTodayTime(input string, now time.Time) (time.Time, bool) {
	rest, ok := strings.CutPrefix(input, "today ")
	if !ok {
		return time.Time{}, false
	}
	c, ok := ParseClock(rest)
	if !ok {
		return time.Time{}, false
	}
	return onDay(now, 0, c)
}

func parseTomorrow(input string, now time.Time) (time.Time, bool) {
	if input != "tomorrow" {
		return time.Time{}, false
	}
	return onDay(now, 1, StartOfDay)
}

func parseTomorrowTime(input string, now time.Time) (time.Time, bool) {
	rest, ok := strings.CutPrefix(input, "tomorrow ")
	if !ok {
		return time.Time{}, false
	}
	c, ok := ParseClock(rest)
	if !ok {
		return time.Time{}, false
	}
	return onDay(now, 1, c)
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// parseWeekday resolves a weekday name to its next occurrence strictly after
// today, optionally followed by a single clock-time token.
func parseWeekday(input string, now time.Time) (time.Time, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 || len(parts) > 2 {
		return time.Time{}, false
	}
	target, ok := weekdays[parts[0]]
	if !ok {
		return time.Time{}, false
	}
	c := StartOfDay
	if len(parts) == 2 {
		if c, ok = ParseClock(parts[1]); !ok {
			return time.Time{}, false
		}
	}
	offset := (int(target) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return onDay(now, offset, c)
}

func parseBareClock(input string, now time.Time) (time.Time, bool) {
	c, ok := ParseClock(input)
	if !ok {
		return time.Time{}, false
	}
	return onDay(now, 0, c)
}

// parseShortDate handles "M/D" and "M-D" in now's year.
func parseShortDate(input string, now time.Time) (time.Time, bool) {
	if len(input) > 5 {
		return time.Time{}, false
	}
	sep := "-"
	if strings.Contains(input, "/") {
		sep = "/"
	} else if !strings.Contains(input, "-") {
		return time.Time{}, false
	}
	parts := strings.Split(input, sep)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	month, ok := parseUint(parts[0])
	if !ok {
		return time.Time{}, false
	}
	day, ok := parseUint(parts[1])
	if !ok {
		return time.Time{}, false
	}
	return wallTime(now.Year(), month, day, StartOfDay, now.Location())
}

// parseFullDate handles "YYYY-MM-DD".
func parseFullDate(input string, now time.Time) (time.Time, bool) {
	if len(input) != 10 || strings.Count(input, "-") != 2 {
		return time.Time{}, false
	}
	parts := strings.Split(input, "-")
	year, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return time.Time{}, false
	}
	month, ok := parseUint(parts[1])
	if !ok {
		return time.Time{}, false
	}
	day, ok := parseUint(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return wallTime(int(year), month, day, StartOfDay, now.Location())
}

// onDay returns the calendar day offset days after now's date at clock c.
func onDay(now time.Time, offset int, c Clock) (time.Time, bool) {
	y, m, d := now.Date()
	// Normalise through UTC so the day arithmetic never sees a DST gap.
	day := time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC)
	return wallTime(day.Year(), int(day.Month()), day.Day(), c, now.Location())
}

// wallTime builds the instant for a local wall-clock reading. It refuses
// readings that time.Date would silently normalise: out-of-range fields,
// impossible calendar dates, and local times that are skipped or repeated
// by a zone transition.
func wallTime(year, month, day int, c Clock, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || !c.valid() {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, c.Hour, c.Minute, 0, 0, loc)
	if !sameWall(t, year, month, day, c) {
		return time.Time{}, false
	}
	_, before := t.Add(-24 * time.Hour).Zone()
	_, after := t.Add(24 * time.Hour).Zone()
	if before != after {
		shift := time.Duration(before-after) * time.Second
		for _, alt := range []time.Time{t.Add(shift), t.Add(-shift)} {
			if sameWall(alt, year, month, day, c) {
				return time.Time{}, false
			}
		}
	}
	return t, true
}

func sameWall(t time.Time, year, month, day int, c Clock) bool {
	y, m, d := t.Date()
	return y == year && int(m) == month && d == day && t.Hour() == c.Hour && t.Minute() == c.Minute
}

// parseUint accepts an optional leading '+' followed by decimal digits.
func parseUint(s string) (int, bool) {
	s = strings.TrimPrefix(s, "+")
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
