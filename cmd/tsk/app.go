package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/taxilian/tsk/internal/config"
	"github.com/taxilian/tsk/internal/display"
	"github.com/taxilian/tsk/internal/model"
	"github.com/taxilian/tsk/internal/store"
	"github.com/taxilian/tsk/internal/timeparse"
)

// app is the per-invocation context shared by every command.
type app struct {
	backend store.Backend
	cfg     *config.Config
	view    *display.Config
	sort    string
	filter  store.Filter
	out     io.Writer
	errOut  io.Writer
	now     time.Time
}

type listKind int

const (
	listOpen listKind = iota
	listAll
	listWeek
	listOverdue
)

func (a *app) load() (*store.Store, error) {
	s, err := a.backend.Load()
	if err != nil {
		return nil, fmt.Errorf("Could not load store: %w", err)
	}
	slog.Debug("loaded store", "todos", len(s.Todos), "next_id", s.NextID)
	return s, nil
}

func (a *app) save(s *store.Store) error {
	if err := a.backend.Save(s); err != nil {
		return fmt.Errorf("Could not save: %w", err)
	}
	slog.Debug("saved store", "todos", len(s.Todos))
	return nil
}

// reportf prints an error line without aborting the command.
func (a *app) reportf(format string, args ...any) {
	display.PrintError(a.errOut, fmt.Sprintf(format, args...), a.view)
}

func parseDeadline(expr string, now time.Time) (*time.Time, error) {
	t, ok := timeparse.Parse(expr, now)
	if !ok {
		return nil, fmt.Errorf("Could not parse time %q", expr)
	}
	return &t, nil
}

func checkPriority(p *int) error {
	if p != nil && !model.ValidPriority(*p) {
		return errors.New("Priority must be 1, 2, or 3")
	}
	return nil
}

// parseIDs converts task ID arguments.
func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errors.New("At least one task ID is required")
	}
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("Invalid task ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *app) list(kind listKind) error {
	s, err := a.load()
	if err != nil {
		return err
	}

	var todos []*model.Todo
	switch kind {
	case listAll:
		todos = s.All()
	case listWeek:
		todos = s.Week(a.now)
	case listOverdue:
		todos = s.Overdue(a.now)
	default:
		todos = s.Open()
	}
	todos = a.filter.Apply(todos)
	store.SortTodos(todos, a.sort)
	display.PrintList(a.out, todos, a.now, a.view)
	return nil
}

func (a *app) add(args []string, priority *int, timeExpr *string) error {
	if len(args) == 0 {
		return errors.New("Task text is required")
	}
	if err := checkPriority(priority); err != nil {
		return err
	}
	words := model.ParseWords(args)
	if words.Text == "" {
		return errors.New("Task text is required")
	}
	// Tag removal has no meaning for a new task.
	words.RemoveTags = nil

	var deadline *time.Time
	if timeExpr != nil {
		var err error
		if deadline, err = parseDeadline(*timeExpr, a.now); err != nil {
			return err
		}
	}

	s, err := a.load()
	if err != nil {
		return err
	}
	todo := model.NewTodo(words.Text, a.now)
	words.Apply(&todo)
	todo.Priority = priority
	todo.Deadline = deadline
	added := s.Add(todo)
	if err := a.save(s); err != nil {
		return err
	}
	display.PrintAdded(a.out, added, a.now, a.view)
	return nil
}

func (a *app) done(args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	s, err := a.load()
	if err != nil {
		return err
	}

	changed, failed := 0, 0
	for _, id := range ids {
		todo, err := s.Get(id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			a.reportf("Task #%d not found", id)
			failed++
		case todo.Done:
			fmt.Fprintf(a.out, "Task #%d is already completed\n", id)
		default:
			todo.MarkDone(a.now)
			display.PrintCompleted(a.out, todo, a.view)
			changed++
		}
	}
	return a.finish(s, changed, failed)
}

func (a *app) delete(args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	s, err := a.load()
	if err != nil {
		return err
	}

	changed, failed := 0, 0
	for _, id := range ids {
		removed, err := s.Remove(id)
		if err != nil {
			a.reportf("Task #%d not found", id)
			failed++
			continue
		}
		display.PrintDeleted(a.out, &removed, a.view)
		changed++
	}
	return a.finish(s, changed, failed)
}

// finish saves after a batch command. The command fails when nothing
// changed and at least one ID was bad.
func (a *app) finish(s *store.Store, changed, failed int) error {
	if changed > 0 {
		if err := a.save(s); err != nil {
			return err
		}
	}
	if changed == 0 && failed > 0 {
		return errReported
	}
	return nil
}

type editOptions struct {
	priority      *int
	timeExpr      *string
	clearTime     bool
	clearPriority bool
	clearProject  bool
}

func (a *app) edit(args []string, opts editOptions) error {
	if len(args) == 0 {
		return errors.New("A task ID is required")
	}
	ids, err := parseIDs(args[:1])
	if err != nil {
		return err
	}
	id := ids[0]
	if err := checkPriority(opts.priority); err != nil {
		return err
	}

	var deadline *time.Time
	if !opts.clearTime && opts.timeExpr != nil {
		if deadline, err = parseDeadline(*opts.timeExpr, a.now); err != nil {
			return err
		}
	}

	s, err := a.load()
	if err != nil {
		return err
	}
	todo, err := s.Get(id)
	if err != nil {
		return fmt.Errorf("Task #%d not found", id)
	}

	if opts.clearProject {
		todo.Project = nil
	}
	model.ParseWords(args[1:]).Apply(todo)

	switch {
	case opts.clearPriority:
		todo.Priority = nil
	case opts.priority != nil:
		p := *opts.priority
		todo.Priority = &p
	}
	switch {
	case opts.clearTime:
		todo.Deadline = nil
	case deadline != nil:
		todo.Deadline = deadline
	}

	if err := a.save(s); err != nil {
		return err
	}
	display.PrintUpdated(a.out, todo, a.now, a.view)
	return nil
}

func (a *app) clear() error {
	s, err := a.load()
	if err != nil {
		return err
	}
	count := s.ClearCompleted()
	if count > 0 {
		if err := a.save(s); err != nil {
			return err
		}
	}
	display.PrintCleared(a.out, count, a.view)
	return nil
}

func (a *app) undo() error {
	s, err := a.backend.Undo()
	if errors.Is(err, store.ErrNothingToUndo) {
		fmt.Fprintln(a.out, "Nothing to undo.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("Could not undo: %w", err)
	}
	display.PrintUndo(a.out, len(s.Todos), a.view)
	return nil
}

func (a *app) today() error {
	s, err := a.load()
	if err != nil {
		return err
	}
	display.PrintToday(a.out, s.Today(a.now), a.now, a.view)
	return nil
}

func (a *app) stats() error {
	s, err := a.load()
	if err != nil {
		return err
	}
	display.PrintStats(a.out, s.Stats(a.now), a.now, a.view)
	return nil
}

func (a *app) project(name string) error {
	s, err := a.load()
	if err != nil {
		return err
	}
	todos := s.InProject(name)
	store.SortTodos(todos, store.ByPriority)
	display.PrintProject(a.out, name, todos, a.now, a.view)
	return nil
}

func (a *app) projects() error {
	s, err := a.load()
	if err != nil {
		return err
	}
	display.PrintProjects(a.out, s.Projects(), a.view)
	return nil
}

// export writes the whole store as JSON or YAML to output, or to a.out
// when output is empty.
func (a *app) export(asYAML bool, output string) error {
	s, err := a.load()
	if err != nil {
		return err
	}
	data, err := store.Encode(s, asYAML)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.out, "Exported %d %s to %s\n", len(s.Todos), pluralTasks(len(s.Todos)), output)
	return nil
}

func pluralTasks(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
