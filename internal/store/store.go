// Package store holds the task list and persists it through a Backend.
//
// The list is loaded in full, mutated in memory and written back. Each
// Save first preserves the previously persisted state in a single undo
// slot, so the most recent mutation can be reverted with Undo.
package store

import (
	"errors"
	"sort"
	"strings"

	"github.com/taxilian/tsk/internal/model"
)

// CurrentVersion is the store format version written by Save.
const CurrentVersion = 1

var (
	// ErrNotFound is returned when a task ID does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrNothingToUndo is returned by Undo when the undo slot is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// Backend persists a Store.
type Backend interface {
	// Load returns the persisted store, or an empty one if none exists yet.
	Load() (*Store, error)
	// Save copies the currently persisted state into the undo slot and then
	// persists s.
	Save(s *Store) error
	// Undo restores the undo slot, empties it and returns the restored store.
	Undo() (*Store, error)
}

// Store is the full task list.
type Store struct {
	Version int          `json:"version" yaml:"version"`
	NextID  int          `json:"next_id" yaml:"next_id"`
	Todos   []model.Todo `json:"todos" yaml:"todos"`
}

// New returns an empty store.
func New() *Store {
	return &Store{Version: CurrentVersion, NextID: 1, Todos: []model.Todo{}}
}

// Add assigns the next ID to todo, appends it and returns the stored copy.
func (s *Store) Add(todo model.Todo) *model.Todo {
	if s.NextID < 1 {
		s.NextID = 1
	}
	todo.ID = s.NextID
	s.NextID++
	s.Todos = append(s.Todos, todo)
	return &s.Todos[len(s.Todos)-1]
}

// Get returns a pointer into the list, valid until the list is modified.
func (s *Store) Get(id int) (*model.Todo, error) {
	for i := range s.Todos {
		if s.Todos[i].ID == id {
			return &s.Todos[i], nil
		}
	}
	return nil, ErrNotFound
}

// Remove deletes the task with the given ID and returns it.
func (s *Store) Remove(id int) (model.Todo, error) {
	for i := range s.Todos {
		if s.Todos[i].ID == id {
			removed := s.Todos[i]
			s.Todos = append(s.Todos[:i], s.Todos[i+1:]...)
			return removed, nil
		}
	}
	return model.Todo{}, ErrNotFound
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() int {
	before := len(s.Todos)
	kept := s.Todos[:0]
	for _, t := range s.Todos {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	s.Todos = kept
	return before - len(kept)
}

// Open returns pointers to every incomplete task, in list order.
func (s *Store) Open() []*model.Todo {
	return s.filter(func(t *model.Todo) bool { return !t.Done })
}

// Completed returns pointers to every completed task, in list order.
func (s *Store) Completed() []*model.Todo {
	return s.filter(func(t *model.Todo) bool { return t.Done })
}

// All returns pointers to every task, in list order.
func (s *Store) All() []*model.Todo {
	return s.filter(func(*model.Todo) bool { return true })
}

func (s *Store) filter(keep func(*model.Todo) bool) []*model.Todo {
	var out []*model.Todo
	for i := range s.Todos {
		if keep(&s.Todos[i]) {
			out = append(out, &s.Todos[i])
		}
	}
	return out
}

// ProjectCount is the number of open tasks in a project.
type ProjectCount struct {
	Name  string
	Count int
}

// Projects counts open tasks per project, sorted by name ignoring case.
func (s *Store) Projects() []ProjectCount {
	counts := make(map[string]int)
	for _, t := range s.Open() {
		if t.Project != nil {
			counts[*t.Project]++
		}
	}
	out := make([]ProjectCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ProjectCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Normalize repairs fields that older or hand-edited files may omit.
func (s *Store) Normalize() {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	if s.Todos == nil {
		s.Todos = []model.Todo{}
	}
	maxID := 0
	for i := range s.Todos {
		if s.Todos[i].Tags == nil {
			s.Todos[i].Tags = []string{}
		}
		if s.Todos[i].ID > maxID {
			maxID = s.Todos[i].ID
		}
	}
	if s.NextID <= maxID {
		s.NextID = maxID + 1
	}
}
