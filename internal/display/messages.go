package display

import (
	"fmt"
	"io"
	"time"

	"github.com/taxilian/tsk/internal/model"
)

// EmptyMessage is shown when a list view matches no tasks.
const EmptyMessage = "No open tasks. Use 'tsk add' to create one."

// PrintAdded confirms a new task.
func PrintAdded(w io.Writer, todo *model.Todo, now time.Time, cfg *Config) {
	msg := fmt.Sprintf("Added #%d: %s", todo.ID, Summary(todo, now))
	fmt.Fprintln(w, cfg.paint(cfg.styles.green, msg))
}

// PrintUpdated confirms an edit.
func PrintUpdated(w io.Writer, todo *model.Todo, now time.Time, cfg *Config) {
	msg := fmt.Sprintf("Updated #%d: %s", todo.ID, Summary(todo, now))
	fmt.Fprintln(w, cfg.paint(cfg.styles.cyan, msg))
}

// PrintCompleted confirms a task was marked done.
func PrintCompleted(w io.Writer, todo *model.Todo, cfg *Config) {
	msg := fmt.Sprintf("Completed #%d: %s", todo.ID, todo.Text)
	fmt.Fprintln(w, cfg.paint(cfg.styles.green, msg))
}

// PrintDeleted confirms a task was removed.
func PrintDeleted(w io.Writer, todo *model.Todo, cfg *Config) {
	msg := fmt.Sprintf("Deleted #%d: %s", todo.ID, todo.Text)
	fmt.Fprintln(w, cfg.paint(cfg.styles.yellow, msg))
}

// PrintUndo reports how many tasks the restored state holds.
func PrintUndo(w io.Writer, count int, cfg *Config) {
	msg := fmt.Sprintf("Undo successful. Restored %d %s.", count, plural(count, "task"))
	fmt.Fprintln(w, cfg.paint(cfg.styles.green, msg))
}

// PrintCleared reports how many completed tasks were removed.
func PrintCleared(w io.Writer, count int, cfg *Config) {
	if count == 0 {
		fmt.Fprintln(w, "No completed tasks to clear.")
		return
	}
	msg := fmt.Sprintf("Cleared %d completed %s.", count, plural(count, "task"))
	fmt.Fprintln(w, cfg.paint(cfg.styles.green, msg))
}

// PrintError writes "Error: msg" to w, normally stderr.
func PrintError(w io.Writer, msg string, cfg *Config) {
	fmt.Fprintf(w, "%s: %s\n", cfg.paint(cfg.styles.redBold, "Error"), msg)
}

// PrintEmpty writes the empty list message.
func PrintEmpty(w io.Writer) {
	fmt.Fprintln(w, EmptyMessage)
}

// PrintList writes one FormatTodo row per task, or the empty message.
func PrintList(w io.Writer, todos []*model.Todo, now time.Time, cfg *Config) {
	if len(todos) == 0 {
		PrintEmpty(w)
		return
	}
	for _, t := range todos {
		fmt.Fprintln(w, FormatTodo(t, now, cfg))
	}
}
