package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/taxilian/tsk/internal/format"
	"github.com/taxilian/tsk/internal/model"
)

// FormatTodo renders one list row:
//
//	✓   3 !!   Write report                         today 3:00pm        @work +urgent
func FormatTodo(todo *model.Todo, now time.Time, cfg *Config) string {
	check := " "
	if todo.Done {
		check = cfg.paint(cfg.styles.green, "✓")
	}
	id := cfg.paint(cfg.styles.dim, fmt.Sprintf("%3d", todo.ID))

	text := Truncate(todo.Text, cfg.textWidth())
	textStyle := lipgloss.Style{}
	if todo.Done {
		textStyle = cfg.styles.strikeDimmed
	}

	row := fmt.Sprintf("%s %s %s  %s  %s  %s",
		check, id, priority(todo, cfg),
		column(cfg, textStyle, text, cfg.textWidth()),
		deadlineColumn(todo, now, cfg),
		metadata(todo, cfg, true))
	return strings.TrimRight(row, " ")
}

// FormatCompactTodo renders a row for the sectioned views: indented, no
// checkmark, a wider id and no project.
func FormatCompactTodo(todo *model.Todo, now time.Time, cfg *Config) string {
	id := cfg.paint(cfg.styles.dim, fmt.Sprintf("%4d", todo.ID))
	text := Truncate(todo.Text, cfg.textWidth())
	row := fmt.Sprintf("  %s %s  %s  %s  %s",
		id, priority(todo, cfg),
		PadRight(text, cfg.textWidth()),
		deadlineColumn(todo, now, cfg),
		metadata(todo, cfg, false))
	return strings.TrimRight(row, " ")
}

// DeadlineText is the plain deadline column content.
func DeadlineText(todo *model.Todo, now time.Time) string {
	switch {
	case todo.Done && todo.CompletedAt != nil:
		return format.Completed(*todo.CompletedAt, now)
	case todo.Done:
		return "done"
	case todo.Deadline != nil:
		return format.Deadline(*todo.Deadline, now, todo.IsOverdue(now))
	default:
		return NoDeadline
	}
}

func deadlineColumn(todo *model.Todo, now time.Time, cfg *Config) string {
	text := DeadlineText(todo, now)
	var style lipgloss.Style
	switch {
	case todo.Done:
		style = cfg.styles.green
	case todo.IsOverdue(now):
		style = cfg.styles.redBold
	case todo.Deadline != nil && format.IsDueToday(*todo.Deadline, now):
		style = cfg.styles.yellow
	}
	return column(cfg, style, text, DeadlineWidth)
}

func priority(todo *model.Todo, cfg *Config) string {
	marker := todo.PriorityDisplay()
	switch todo.PriorityValue(0) {
	case model.PriorityHigh:
		return cfg.paint(cfg.styles.redBold, marker)
	case model.PriorityMedium:
		return cfg.paint(cfg.styles.yellow, marker)
	case model.PriorityLow:
		return cfg.paint(cfg.styles.blue, marker)
	}
	return marker
}

// column paints text and pads it to width cells. Padding stays outside the
// styled span.
func column(cfg *Config, style lipgloss.Style, text string, width int) string {
	pad := width - runewidth.StringWidth(text)
	if pad < 0 {
		pad = 0
	}
	return cfg.paint(style, text) + strings.Repeat(" ", pad)
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "+" + t
	}
	return strings.Join(out, " ")
}

func metadata(todo *model.Todo, cfg *Config, withProject bool) string {
	project := ""
	if withProject && todo.Project != nil {
		project = cfg.paint(cfg.styles.magenta, "@"+*todo.Project)
	}
	return joinNonEmpty(project, cfg.paint(cfg.styles.cyan, tagList(todo.Tags)))
}

// Summary is the one-line description used by add and edit confirmations:
// text, priority badge, deadline, project and tags.
func Summary(todo *model.Todo, now time.Time) string {
	var deadline, project string
	if todo.Deadline != nil {
		deadline = format.Deadline(*todo.Deadline, now, false)
	}
	if todo.Project != nil {
		project = "@" + *todo.Project
	}
	return joinNonEmpty(todo.Text, todo.PriorityBadge(), deadline, project, tagList(todo.Tags))
}
