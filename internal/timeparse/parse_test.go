package timeparse

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"
)

// Wednesday, 2024-06-12 10:30 local.
var testNow = time.Date(2024, 6, 12, 10, 30, 0, 0, time.Local)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		// relative
		{"in 2 hours", testNow.Add(2 * time.Hour)},
		{"in 1 hour", testNow.Add(time.Hour)},
		{"in 3 h", testNow.Add(3 * time.Hour)},
		{"in 2 days", testNow.Add(48 * time.Hour)},
		{"in 1 d", testNow.Add(24 * time.Hour)},
		{"in 2 weeks", testNow.Add(14 * 24 * time.Hour)},
		{"in 1 w", testNow.Add(7 * 24 * time.Hour)},
		{"in 45 minutes", testNow.Add(45 * time.Minute)},
		{"in 10 min", testNow.Add(10 * time.Minute)},
		{"in 5 m", testNow.Add(5 * time.Minute)},
		{"in -1 days", testNow.Add(-24 * time.Hour)},
		{"in +3 hours", testNow.Add(3 * time.Hour)},
		{"in   2   hours", testNow.Add(2 * time.Hour)},

		// today / tomorrow
		{"today", at(2024, 6, 12, 23, 59)},
		{"today 3pm", at(2024, 6, 12, 15, 0)},
		{"today 9:15am", at(2024, 6, 12, 9, 15)},
		{"today 18:45", at(2024, 6, 12, 18, 45)},
		{"tomorrow", at(2024, 6, 13, 9, 0)},
		{"tomorrow 3pm", at(2024, 6, 13, 15, 0)},
		{"tomorrow 12am", at(2024, 6, 13, 0, 0)},
		{"tomorrow 12pm", at(2024, 6, 13, 12, 0)},

		// weekdays, today is wednesday
		{"thu", at(2024, 6, 13, 9, 0)},
		{"thursday", at(2024, 6, 13, 9, 0)},
		{"fri", at(2024, 6, 14, 9, 0)},
		{"fri 3pm", at(2024, 6, 14, 15, 0)},
		{"sunday 10:00", at(2024, 6, 16, 10, 0)},
		{"mon", at(2024, 6, 17, 9, 0)},
		{"tue 8am", at(2024, 6, 18, 8, 0)},
		{"wed", at(2024, 6, 19, 9, 0)},
		{"wednesday 5pm", at(2024, 6, 19, 17, 0)},

		// bare clock, no roll to tomorrow
		{"11am", at(2024, 6, 12, 11, 0)},
		{"3:30pm", at(2024, 6, 12, 15, 30)},
		{"14:00", at(2024, 6, 12, 14, 0)},
		{"9am", at(2024, 6, 12, 9, 0)},
		{"0:05", at(2024, 6, 12, 0, 5)},

		// dates
		{"12/25", at(2024, 12, 25, 9, 0)},
		{"1/1", at(2024, 1, 1, 9, 0)},
		{"6-20", at(2024, 6, 20, 9, 0)},
		{"2/29", at(2024, 2, 29, 9, 0)},
		{"2024-12-25", at(2024, 12, 25, 9, 0)},
		{"2031-03-04", at(2031, 3, 4, 9, 0)},
		{"9999-01-01", at(9999, 1, 1, 9, 0)},

		// normalisation
		{"   TODAY  ", at(2024, 6, 12, 23, 59)},
		{"Tomorrow 3PM", at(2024, 6, 13, 15, 0)},
		{"FRI", at(2024, 6, 14, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input, testNow)
			if !ok {
				t.Fatalf("Parse(%q) did not match", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_NoMatch(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"25:00",
		"3:70pm",
		"13pm",
		"24:00",
		"pm",
		"m",
		"in 2",
		"in 2 fortnights",
		"in two hours",
		"in 2 hours please",
		"in 9999999999999 weeks",
		"in 99999999999999999999 hours",
		"today 25:00",
		"today noon",
		"tomorrow 3 pm",
		"fri 3:99pm",
		"fri 3pm extra",
		"friday at 3pm",
		"someday",
		"13/1",
		"0/1",
		"2/30",
		"2/0",
		"1/2/3",
		"2023-02-29",
		"2024-13-01",
		"2024-00-10",
		"2024/12/25",
		"24-12-2025",
		"12",
		"hello world",
	}

	for _, input := range inputs {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			if got, ok := Parse(input, testNow); ok {
				t.Errorf("Parse(%q) = %v, want no match", input, got)
			}
		})
	}
}

func TestParse_WhitespaceAndCaseEquivalent(t *testing.T) {
	want, _ := Parse("today", testNow)
	got, ok := Parse("   TODAY  ", testNow)
	if !ok || !got.Equal(want) {
		t.Errorf("Parse(\"   TODAY  \") = %v, %v; want %v", got, ok, want)
	}
}

func TestParse_WeekdayNeverToday(t *testing.T) {
	names := map[time.Weekday]string{
		time.Sunday:    "sunday",
		time.Monday:    "mon",
		time.Tuesday:   "tuesday",
		time.Wednesday: "wed",
		time.Thursday:  "thursday",
		time.Friday:    "fri",
		time.Saturday:  "sat",
	}

	start := time.Date(2024, 12, 28, 18, 0, 0, 0, time.Local)
	for i := 0; i < 14; i++ {
		now := start.AddDate(0, 0, i)
		name := names[now.Weekday()]
		t.Run(now.Format("2006-01-02")+"/"+name, func(t *testing.T) {
			got, ok := Parse(name, now)
			if !ok {
				t.Fatalf("Parse(%q) did not match", name)
			}
			want := time.Date(now.Year(), now.Month(), now.Day()+7, 9, 0, 0, 0, time.Local)
			if !got.Equal(want) {
				t.Errorf("Parse(%q, %s) = %v, want %v", name, now.Format("Mon 2006-01-02"), got, want)
			}
		})
	}
}

func TestParse_ShortDateEveryDayOfYear(t *testing.T) {
	now := time.Date(2023, 3, 1, 12, 0, 0, 0, time.Local)
	for d := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local); d.Year() == 2023; d = d.AddDate(0, 0, 1) {
		input := fmt.Sprintf("%d/%d", d.Month(), d.Day())
		got, ok := Parse(input, now)
		if !ok {
			t.Errorf("Parse(%q) did not match", input)
			continue
		}
		if got.Year() != 2023 || got.Month() != d.Month() || got.Day() != d.Day() || got.Hour() != 9 || got.Minute() != 0 {
			t.Errorf("Parse(%q) = %v", input, got)
		}
	}
	if _, ok := Parse("2/29", now); ok {
		t.Error("Parse(\"2/29\") in a non-leap year should not match")
	}
}

func TestParse_YearRollover(t *testing.T) {
	now := time.Date(2024, 12, 31, 20, 0, 0, 0, time.Local)

	got, ok := Parse("tomorrow", now)
	if !ok || !got.Equal(time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)) {
		t.Errorf("Parse(\"tomorrow\") = %v, %v", got, ok)
	}

	// Tuesday -> next Monday crosses into the new year.
	got, ok = Parse("mon", now)
	if !ok || !got.Equal(time.Date(2025, 1, 6, 9, 0, 0, 0, time.Local)) {
		t.Errorf("Parse(\"mon\") = %v, %v", got, ok)
	}

	// Short dates stay in the current year even when already past.
	got, ok = Parse("1/1", now)
	if !ok || !got.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)) {
		t.Errorf("Parse(\"1/1\") = %v, %v", got, ok)
	}
}

func TestParse_MonthRollover(t *testing.T) {
	now := time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local)
	got, ok := Parse("tomorrow 5pm", now)
	if !ok || !got.Equal(time.Date(2024, 2, 1, 17, 0, 0, 0, time.Local)) {
		t.Errorf("Parse(\"tomorrow 5pm\") = %v, %v", got, ok)
	}
}

func TestParse_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2024, 6, 12, 23, 30, 0, 0, loc)

	got, ok := Parse("tomorrow", now)
	if !ok {
		t.Fatal("no match")
	}
	if got.Location() != loc {
		t.Errorf("location = %v, want %v", got.Location(), loc)
	}
	if want := time.Date(2024, 6, 13, 9, 0, 0, 0, loc); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParse_DSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// 2024-03-10 02:30 does not exist in New York.
	spring := time.Date(2024, 3, 9, 12, 0, 0, 0, loc)
	if got, ok := Parse("tomorrow 2:30am", spring); ok {
		t.Errorf("nonexistent local time parsed as %v", got)
	}
	if _, ok := Parse("tomorrow 3:30am", spring); !ok {
		t.Error("valid time after spring-forward should parse")
	}

	// 2024-11-03 01:30 happens twice in New York.
	fall := time.Date(2024, 11, 2, 12, 0, 0, 0, loc)
	if got, ok := Parse("tomorrow 1:30am", fall); ok {
		t.Errorf("ambiguous local time parsed as %v", got)
	}
	got, ok := Parse("tomorrow", fall)
	if !ok || got.Hour() != 9 || got.Day() != 3 {
		t.Errorf("Parse(\"tomorrow\") across fall-back = %v, %v", got, ok)
	}
}

func TestMatchInput_ReportsGrammar(t *testing.T) {
	tests := []struct {
		input   string
		grammar string
	}{
		{"in 2 hours", "relative"},
		{"today", "today"},
		{"today 3pm", "today-time"},
		{"tomorrow", "tomorrow"},
		{"tomorrow 14:00", "tomorrow-time"},
		{"fri 3pm", "weekday"},
		{"3pm", "clock"},
		{"12/25", "short-date"},
		{"12-25", "short-date"},
		{"2024-12-25", "full-date"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, ok := MatchInput(tt.input, testNow)
			if !ok {
				t.Fatalf("MatchInput(%q) did not match", tt.input)
			}
			if m.Grammar != tt.grammar {
				t.Errorf("grammar = %q, want %q", m.Grammar, tt.grammar)
			}
		})
	}
}

func TestGrammars_Order(t *testing.T) {
	want := []string{
		"relative", "today", "today-time", "tomorrow", "tomorrow-time",
		"weekday", "clock", "short-date", "full-date",
	}
	if len(Grammars) != len(want) {
		t.Fatalf("len(Grammars) = %d, want %d", len(Grammars), len(want))
	}
	for i, g := range Grammars {
		if g.Name != want[i] {
			t.Errorf("Grammars[%d] = %q, want %q", i, g.Name, want[i])
		}
	}
}

func TestGrammars_Independent(t *testing.T) {
	// Each grammar rejects input owned by another.
	if _, ok := parseWeekday("today", testNow); ok {
		t.Error("weekday grammar accepted \"today\"")
	}
	if _, ok := parseShortDate("2024-12-25", testNow); ok {
		t.Error("short-date grammar accepted a full date")
	}
	if _, ok := parseFullDate("12/25", testNow); ok {
		t.Error("full-date grammar accepted a short date")
	}
	if _, ok := parseBareClock("fri", testNow); ok {
		t.Error("clock grammar accepted a weekday")
	}
	if _, ok := parseRelative("tomorrow", testNow); ok {
		t.Error("relative grammar accepted \"tomorrow\"")
	}
}
