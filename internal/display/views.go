package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/taxilian/tsk/internal/model"
	"github.com/taxilian/tsk/internal/store"
)

const (
	todaySeparatorWidth   = 44
	projectSeparatorWidth = 38
	statsLabelWidth       = 14
	oldestTextWidth       = 20
)

// PrintToday writes the sectioned daily view.
func PrintToday(w io.Writer, ts store.TodaySections, now time.Time, cfg *Config) {
	total := ts.Total()
	if total == 0 {
		fmt.Fprintln(w, cfg.paint(cfg.styles.dim, "No tasks for today. Enjoy your day!"))
		return
	}

	header := "Today's Tasks - " + now.Format("Monday, January 2")
	fmt.Fprintf(w, "  %s\n", cfg.paint(cfg.styles.bold, header))
	fmt.Fprintf(w, "  %s\n", cfg.paint(cfg.styles.dim, strings.Repeat("─", todaySeparatorWidth)))

	sections := []struct {
		title string
		todos []*model.Todo
		style lipgloss.Style
	}{
		{"OVERDUE", ts.Overdue, cfg.styles.redBold},
		{"HIGH PRIORITY - TODAY", ts.HighPriorityToday, cfg.styles.yellowBold},
		{"TODAY", ts.Today, cfg.styles.bold},
		{"HIGH PRIORITY (no deadline)", ts.HighPriority, cfg.styles.cyanBold},
	}
	for _, sec := range sections {
		if len(sec.todos) == 0 {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", cfg.paint(sec.style, fmt.Sprintf("%s (%d)", sec.title, len(sec.todos))))
		for _, t := range sec.todos {
			fmt.Fprintln(w, FormatCompactTodo(t, now, cfg))
		}
	}

	summary := fmt.Sprintf("%d %s total | %d overdue | %d high priority",
		total, plural(total, "task"), len(ts.Overdue), ts.HighPriorityCount())
	style := cfg.styles.dim
	if len(ts.Overdue) > 0 {
		style = cfg.styles.red
	}
	fmt.Fprintf(w, "  %s\n", cfg.paint(style, summary))
}

// PrintProject writes the open tasks of one project, already sorted.
func PrintProject(w io.Writer, name string, todos []*model.Todo, now time.Time, cfg *Config) {
	header := fmt.Sprintf("Project: %s (%d %s)", name, len(todos), plural(len(todos), "task"))
	fmt.Fprintf(w, "  %s\n", cfg.paint(cfg.styles.bold, header))
	fmt.Fprintf(w, "  %s\n", cfg.paint(cfg.styles.dim, strings.Repeat("─", projectSeparatorWidth)))

	if len(todos) == 0 {
		fmt.Fprintf(w, "  %s\n", cfg.paint(cfg.styles.dim, "No tasks in this project."))
		return
	}
	for _, t := range todos {
		fmt.Fprintln(w, FormatCompactTodo(t, now, cfg))
	}
}

// PrintProjects lists projects with their open task counts.
func PrintProjects(w io.Writer, projects []store.ProjectCount, cfg *Config) {
	if len(projects) == 0 {
		fmt.Fprintln(w, cfg.paint(cfg.styles.dim, "No projects found."))
		return
	}
	for _, p := range projects {
		fmt.Fprintf(w, "  %s (%d %s)\n", cfg.paint(cfg.styles.magenta, p.Name), p.Count, plural(p.Count, "task"))
	}
}

// PrintStats writes the summary counters.
func PrintStats(w io.Writer, st store.Stats, now time.Time, cfg *Config) {
	line := func(label, value string) {
		padded := fmt.Sprintf("%-*s", statsLabelWidth, label)
		fmt.Fprintf(w, "%s %s\n", cfg.paint(cfg.styles.bold, padded), value)
	}

	line("Open:", fmt.Sprint(st.Open))
	line("Completed:", fmt.Sprint(st.Completed))
	line("Done today:", fmt.Sprint(st.DoneToday))
	line("Done week:", fmt.Sprint(st.DoneWeek))
	if st.Oldest != nil {
		line("Oldest:", fmt.Sprintf("%s (\"%s\")", Age(now.Sub(st.Oldest.CreatedAt)), Truncate(st.Oldest.Text, oldestTextWidth)))
	}
	if st.TopTag != "" {
		line("Top tag:", cfg.paint(cfg.styles.cyan, fmt.Sprintf("+%s (%d %s)", st.TopTag, st.TopTagCount, plural(st.TopTagCount, "task"))))
	}
}

// Age renders a coarse age in whole days or hours.
func Age(d time.Duration) string {
	switch days, hours := int64(d/(24*time.Hour)), int64(d/time.Hour); {
	case days > 0:
		return fmt.Sprintf("%d days", days)
	case hours > 0:
		return fmt.Sprintf("%d hours", hours)
	default:
		return "just now"
	}
}
