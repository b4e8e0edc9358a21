package format

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/taxilian/tsk/internal/timeparse"
)

// Wednesday, 2024-06-12 10:30.
var now = time.Date(2024, 6, 12, 10, 30, 0, 0, time.UTC)

func TestDeadline(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		want     string
	}{
		{"later today", time.Date(2024, 6, 12, 15, 5, 0, 0, time.UTC), "today 3:05pm"},
		{"today morning", time.Date(2024, 6, 12, 11, 0, 0, 0, time.UTC), "today 11:00am"},
		{"today end of day", time.Date(2024, 6, 12, 23, 59, 0, 0, time.UTC), "today 11:59pm"},
		{"tomorrow", time.Date(2024, 6, 13, 9, 0, 0, 0, time.UTC), "tomorrow 9:00am"},
		{"tomorrow midnight", time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), "tomorrow 12:00am"},
		{"in two days", time.Date(2024, 6, 14, 14, 0, 0, 0, time.UTC), "fri 2:00pm"},
		{"six days out", time.Date(2024, 6, 18, 8, 15, 0, 0, time.UTC), "tue 8:15am"},
		{"seven days out", time.Date(2024, 6, 19, 9, 0, 0, 0, time.UTC), "jun 19"},
		{"later this year", time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC), "dec 25"},
		{"next year", time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC), "2025-01-03"},
		{"past but not overdue, same year", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), "jan 1"},
		{"previous year", time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC), "2023-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Deadline(tt.deadline, now, false); got != tt.want {
				t.Errorf("Deadline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeadline_Overdue(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"just passed", 0, "⚠ 0m ago"},
		{"seconds", 59 * time.Second, "⚠ 0m ago"},
		{"minutes", 42 * time.Minute, "⚠ 42m ago"},
		{"just under an hour", 59*time.Minute + 59*time.Second, "⚠ 59m ago"},
		{"one hour", time.Hour, "⚠ 1h ago"},
		{"hours truncate", 2*time.Hour + 59*time.Minute, "⚠ 2h ago"},
		{"23h59m stays hours", 23*time.Hour + 59*time.Minute, "⚠ 23h ago"},
		{"exactly one day", 24 * time.Hour, "⚠ yesterday"},
		{"one day and change", 47*time.Hour + 59*time.Minute, "⚠ yesterday"},
		{"two days", 48 * time.Hour, "⚠ 2d ago"},
		{"two weeks", 14 * 24 * time.Hour, "⚠ 14d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Deadline(now.Add(-tt.age), now, true); got != tt.want {
				t.Errorf("Deadline(overdue by %v) = %q, want %q", tt.age, got, tt.want)
			}
		})
	}
}

func TestDeadline_OverdueMonotonic(t *testing.T) {
	// magnitude converts an aging phrase back to minutes.
	magnitude := func(phrase string) int {
		body := strings.TrimSuffix(strings.TrimPrefix(phrase, OverdueMarker+" "), " ago")
		if body == "yesterday" {
			return 24 * 60
		}
		n, err := strconv.Atoi(body[:len(body)-1])
		if err != nil {
			t.Fatalf("unexpected phrase %q", phrase)
		}
		switch body[len(body)-1] {
		case 'm':
			return n
		case 'h':
			return n * 60
		default:
			return n * 24 * 60
		}
	}

	// Older deadlines never age less than newer ones.
	prev := -1
	for age := time.Duration(0); age < 5*24*time.Hour; age += 7 * time.Minute {
		m := magnitude(Deadline(now.Add(-age), now, true))
		if m < prev {
			t.Fatalf("magnitude decreased at age %v: %d < %d", age, m, prev)
		}
		prev = m
	}
}

func TestDeadline_ComparesInLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	localNow := time.Date(2024, 6, 12, 20, 0, 0, 0, loc)
	// 02:00 UTC on the 13th is still the 12th at UTC-8.
	deadline := time.Date(2024, 6, 13, 2, 0, 0, 0, time.UTC)

	if got, want := Deadline(deadline, localNow, false), "today 6:00pm"; got != want {
		t.Errorf("Deadline() = %q, want %q", got, want)
	}
}

func TestDeadline_EndToEnd(t *testing.T) {
	parsed, ok := timeparse.Parse("2024-12-25", now)
	if !ok {
		t.Fatal("Parse(\"2024-12-25\") did not match")
	}
	if parsed.Hour() != 9 || parsed.Minute() != 0 {
		t.Errorf("parsed clock = %s, want 09:00", parsed.Format("15:04"))
	}

	sameYear := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := Deadline(parsed, sameYear, false); got != "dec 25" {
		t.Errorf("same year = %q, want %q", got, "dec 25")
	}
	nextYear := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := Deadline(parsed, nextYear, false); got != "2024-12-25" {
		t.Errorf("next year = %q, want %q", got, "2024-12-25")
	}

	tomorrow, _ := timeparse.Parse("tomorrow 3pm", now)
	if got := Deadline(tomorrow, now, false); got != "tomorrow 3:00pm" {
		t.Errorf("tomorrow 3pm renders %q", got)
	}
}

func TestCompleted(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"now", 0, "done just now"},
		{"seconds", 59 * time.Second, "done just now"},
		{"future completion", -time.Minute, "done just now"},
		{"one minute", time.Minute, "done 1m ago"},
		{"minutes", 59*time.Minute + 59*time.Second, "done 59m ago"},
		{"one hour", time.Hour, "done 1h ago"},
		{"hours", 23*time.Hour + 59*time.Minute, "done 23h ago"},
		{"one day", 24 * time.Hour, "done 1d ago"},
		{"days", 10*24*time.Hour + 5*time.Hour, "done 10d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Completed(now.Add(-tt.age), now); got != tt.want {
				t.Errorf("Completed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsDueToday(t *testing.T) {
	tests := []struct {
		deadline time.Time
		want     bool
	}{
		{time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 6, 12, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 6, 11, 23, 59, 0, 0, time.UTC), false},
		{time.Date(2023, 6, 12, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.deadline.Format(time.RFC3339), func(t *testing.T) {
			if got := IsDueToday(tt.deadline, now); got != tt.want {
				t.Errorf("IsDueToday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDueThisWeek(t *testing.T) {
	tests := []struct {
		deadline time.Time
		want     bool
	}{
		{time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 6, 19, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 6, 11, 23, 59, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.deadline.Format(time.RFC3339), func(t *testing.T) {
			if got := IsDueThisWeek(tt.deadline, now); got != tt.want {
				t.Errorf("IsDueThisWeek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayDiff(t *testing.T) {
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"same instant", now, now, 0},
		{"late night to early morning", time.Date(2024, 6, 12, 23, 59, 0, 0, time.UTC), time.Date(2024, 6, 13, 0, 1, 0, 0, time.UTC), 1},
		{"across month", time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), 1},
		{"across leap day", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 2},
		{"across year", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), 1},
		{"backwards", now, now.AddDate(0, 0, -3), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayDiff(tt.from, tt.to); got != tt.want {
				t.Errorf("DayDiff() = %d, want %d", got, tt.want)
			}
		})
	}
}
