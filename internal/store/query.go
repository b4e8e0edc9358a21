package store

import (
	"sort"
	"time"

	"github.com/taxilian/tsk/internal/format"
	"github.com/taxilian/tsk/internal/model"
)

// Sort orders accepted by SortTodos.
const (
	ByPriority = "priority"
	ByTime     = "time"
	ByCreated  = "created"
)

// unsetPriority sorts tasks without a priority after every explicit one.
const unsetPriority = 99

// SortTodos orders todos in place. Unknown orders fall back to ByPriority.
func SortTodos(todos []*model.Todo, order string) {
	switch order {
	case ByTime:
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := todos[i], todos[j]
			switch {
			case a.Deadline != nil && b.Deadline != nil:
				return a.Deadline.Before(*b.Deadline)
			case a.Deadline != nil:
				return true
			case b.Deadline != nil:
				return false
			default:
				return a.ID < b.ID
			}
		})
	case ByCreated:
		sort.SliceStable(todos, func(i, j int) bool {
			return todos[i].CreatedAt.Before(todos[j].CreatedAt)
		})
	default:
		sortByPriority(todos)
	}
}

func sortByPriority(todos []*model.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		pa, pb := todos[i].PriorityValue(unsetPriority), todos[j].PriorityValue(unsetPriority)
		if pa != pb {
			return pa < pb
		}
		return todos[i].ID < todos[j].ID
	})
}

// Filter narrows a list to tasks carrying every tag and, when project is
// non-empty, belonging to that project.
type Filter struct {
	Tags    []string
	Project string
}

// Apply returns the tasks in todos that pass f.
func (f Filter) Apply(todos []*model.Todo) []*model.Todo {
	var out []*model.Todo
	for _, t := range todos {
		if f.Project != "" && !t.InProject(f.Project) {
			continue
		}
		if !hasAllTags(t, f.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasAllTags(t *model.Todo, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}

// Week returns open tasks due between today and seven days from now.
func (s *Store) Week(now time.Time) []*model.Todo {
	return s.filter(func(t *model.Todo) bool {
		return !t.Done && t.Deadline != nil && format.IsDueThisWeek(*t.Deadline, now)
	})
}

// Overdue returns open tasks whose deadline has passed.
func (s *Store) Overdue(now time.Time) []*model.Todo {
	return s.filter(func(t *model.Todo) bool { return t.IsOverdue(now) })
}

// InProject returns open tasks in the named project.
func (s *Store) InProject(name string) []*model.Todo {
	return s.filter(func(t *model.Todo) bool { return !t.Done && t.InProject(name) })
}

// TodaySections groups open tasks for the daily view. A task lands in the
// first section that claims it.
type TodaySections struct {
	Overdue           []*model.Todo
	HighPriorityToday []*model.Todo
	Today             []*model.Todo
	HighPriority      []*model.Todo // high priority, no deadline
}

// Total is the number of tasks across every section.
func (ts TodaySections) Total() int {
	return len(ts.Overdue) + len(ts.HighPriorityToday) + len(ts.Today) + len(ts.HighPriority)
}

// HighPriorityCount counts the high priority sections.
func (ts TodaySections) HighPriorityCount() int {
	return len(ts.HighPriorityToday) + len(ts.HighPriority)
}

// Today buckets the open tasks relevant to now's date. Each bucket is
// sorted by priority, then ID.
func (s *Store) Today(now time.Time) TodaySections {
	var ts TodaySections
	for _, t := range s.Open() {
		high := t.PriorityValue(0) == model.PriorityHigh
		dueToday := t.Deadline != nil && format.IsDueToday(*t.Deadline, now)
		switch {
		case t.IsOverdue(now):
			ts.Overdue = append(ts.Overdue, t)
		case dueToday && high:
			ts.HighPriorityToday = append(ts.HighPriorityToday, t)
		case dueToday:
			ts.Today = append(ts.Today, t)
		case high && t.Deadline == nil:
			ts.HighPriority = append(ts.HighPriority, t)
		}
	}
	for _, section := range [][]*model.Todo{ts.Overdue, ts.HighPriorityToday, ts.Today, ts.HighPriority} {
		sortByPriority(section)
	}
	return ts
}

// Stats summarises the list.
type Stats struct {
	Open      int
	Completed int
	DoneToday int
	DoneWeek  int
	// Oldest is the open task created first, nil when nothing is open.
	Oldest *model.Todo
	// TopTag is the tag carried by the most open tasks.
	TopTag      string
	TopTagCount int
}

// Stats computes counts relative to now. "Done week" covers the last seven
// days, not the calendar week.
func (s *Store) Stats(now time.Time) Stats {
	st := Stats{}
	weekStart := now.Add(-7 * 24 * time.Hour)

	for _, t := range s.Completed() {
		st.Completed++
		if t.CompletedAt == nil {
			continue
		}
		if format.DayDiff(now, *t.CompletedAt) >= 0 {
			st.DoneToday++
		}
		if !t.CompletedAt.Before(weekStart) {
			st.DoneWeek++
		}
	}

	tagCounts := make(map[string]int)
	for _, t := range s.Open() {
		st.Open++
		if st.Oldest == nil || t.CreatedAt.Before(st.Oldest.CreatedAt) {
			st.Oldest = t
		}
		for _, tag := range t.Tags {
			tagCounts[tag]++
		}
	}
	for tag, n := range tagCounts {
		if n > st.TopTagCount || (n == st.TopTagCount && tag < st.TopTag) {
			st.TopTag, st.TopTagCount = tag, n
		}
	}
	return st
}
