// Package format renders deadlines and completion times as short,
// context-aware phrases ("today 3:00pm", "⚠ 2h ago", "done 5m ago").
//
// Every function takes now explicitly. Calendar comparisons happen in the
// location of now.
package format

import (
	"fmt"
	"strings"
	"time"
)

// OverdueMarker prefixes every overdue phrase.
const OverdueMarker = "⚠"

const (
	clockLayout   = "3:04pm"
	weekdayLayout = "Mon 3:04pm"
	monthLayout   = "Jan 2"
	isoLayout     = "2006-01-02"
)

// Deadline renders deadline relative to now. overdue is decided by the
// caller (open task with deadline before now) and selects the aging phrase.
func Deadline(deadline, now time.Time, overdue bool) string {
	if overdue {
		return overduePhrase(now.Sub(deadline))
	}

	deadline = deadline.In(now.Location())
	days := DayDiff(now, deadline)
	switch {
	case days == 0:
		return "today " + deadline.Format(clockLayout)
	case days == 1:
		return "tomorrow " + deadline.Format(clockLayout)
	case days > 1 && days < 7:
		return strings.ToLower(deadline.Format(weekdayLayout))
	case deadline.Year() == now.Year():
		return strings.ToLower(deadline.Format(monthLayout))
	default:
		return deadline.Format(isoLayout)
	}
}

func overduePhrase(age time.Duration) string {
	hours := int64(age / time.Hour)
	switch {
	case hours < 1:
		return fmt.Sprintf("%s %dm ago", OverdueMarker, int64(age/time.Minute))
	case hours < 24:
		return fmt.Sprintf("%s %dh ago", OverdueMarker, hours)
	case hours/24 == 1:
		return OverdueMarker + " yesterday"
	default:
		return fmt.Sprintf("%s %dd ago", OverdueMarker, hours/24)
	}
}

// Completed renders the time elapsed since a task was completed.
func Completed(completed, now time.Time) string {
	age := now.Sub(completed)
	minutes := int64(age / time.Minute)
	switch {
	case minutes < 1:
		return "done just now"
	case minutes < 60:
		return fmt.Sprintf("done %dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("done %dh ago", int64(age/time.Hour))
	default:
		return fmt.Sprintf("done %dd ago", int64(age/(24*time.Hour)))
	}
}

// IsDueToday reports whether deadline falls on now's calendar date.
func IsDueToday(deadline, now time.Time) bool {
	return DayDiff(now, deadline) == 0
}

// IsDueThisWeek reports whether deadline is between zero and seven calendar
// days from now, inclusive.
func IsDueThisWeek(deadline, now time.Time) bool {
	days := DayDiff(now, deadline)
	return days >= 0 && days <= 7
}

// DayDiff returns the number of calendar days from from's date to to's
// date, both read in from's location.
func DayDiff(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(from.Location()).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
