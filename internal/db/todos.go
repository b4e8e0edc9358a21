package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/taxilian/tsk/internal/model"
	"github.com/taxilian/tsk/internal/store"
)

const (
	metaNextID     = "next_id"
	metaUndoNextID = "undo_next_id"
)

// sqlTime formats t as RFC 3339 text, keeping its UTC offset so the value
// reads back as the same wall-clock time.
func sqlTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: sqlTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", ns.String, err)
	}
	return &t, nil
}

// Load implements store.Backend.
func (db *DB) Load() (*store.Store, error) {
	s := store.New()

	rows, err := db.QueryRetry(`
		SELECT id, text, done, priority, deadline, tags, project, created_at, completed_at
		FROM todos ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		s.Todos = append(s.Todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	nextID, err := metaInt(db.DB, metaNextID)
	if err != nil {
		return nil, err
	}
	s.NextID = nextID
	s.Normalize()
	return s, nil
}

// QueryRetry executes a query with retry logic for transient errors.
func (db *DB) QueryRetry(query string, args ...any) (*sql.Rows, error) {
	return withRetry(func() (*sql.Rows, error) {
		return db.Query(query, args...)
	})
}

func scanTodo(rows *sql.Rows) (model.Todo, error) {
	var todo model.Todo
	var done int
	var priority sql.NullInt64
	var deadline, project, completedAt sql.NullString
	var tags, createdAt string

	if err := rows.Scan(&todo.ID, &todo.Text, &done, &priority, &deadline, &tags, &project, &createdAt, &completedAt); err != nil {
		return todo, fmt.Errorf("failed to scan todo: %w", err)
	}

	todo.Done = done != 0
	if priority.Valid {
		p := int(priority.Int64)
		todo.Priority = &p
	}
	if project.Valid {
		todo.Project = &project.String
	}
	if err := json.Unmarshal([]byte(tags), &todo.Tags); err != nil {
		return todo, fmt.Errorf("invalid tags for todo %d: %w", todo.ID, err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return todo, fmt.Errorf("invalid created_at for todo %d: %w", todo.ID, err)
	}
	todo.CreatedAt = created
	if todo.Deadline, err = parseNullTime(deadline); err != nil {
		return todo, err
	}
	if todo.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return todo, err
	}
	return todo, nil
}

// Save implements store.Backend. The previous rows move into the undo slot
// in the same transaction that writes s.
func (db *DB) Save(s *store.Store) error {
	return withRetryNoResult(func() error {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		// A database that was never saved has no state worth undoing to.
		prevNext, saved, err := metaLookup(tx, metaNextID)
		if err != nil {
			return err
		}
		if saved {
			if _, err := tx.Exec(`DELETE FROM todos_undo`); err != nil {
				return fmt.Errorf("failed to clear undo slot: %w", err)
			}
			if _, err := tx.Exec(`INSERT INTO todos_undo SELECT * FROM todos`); err != nil {
				return fmt.Errorf("failed to snapshot todos: %w", err)
			}
			if err := setMeta(tx, metaUndoNextID, prevNext); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(`DELETE FROM todos`); err != nil {
			return fmt.Errorf("failed to clear todos: %w", err)
		}
		for _, todo := range s.Todos {
			if err := insertTodo(tx, todo); err != nil {
				return err
			}
		}
		if err := setMeta(tx, metaNextID, strconv.Itoa(s.NextID)); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		return nil
	})
}

func insertTodo(tx *sql.Tx, todo model.Todo) error {
	tags := todo.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	var priority sql.NullInt64
	if todo.Priority != nil {
		priority = sql.NullInt64{Int64: int64(*todo.Priority), Valid: true}
	}
	var project sql.NullString
	if todo.Project != nil {
		project = sql.NullString{String: *todo.Project, Valid: true}
	}
	done := 0
	if todo.Done {
		done = 1
	}

	_, err = tx.Exec(`
		INSERT INTO todos (id, text, done, priority, deadline, tags, project, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Text, done, priority, nullTime(todo.Deadline), string(tagsJSON), project,
		sqlTime(todo.CreatedAt), nullTime(todo.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo %d: %w", todo.ID, err)
	}
	return nil
}

// Undo implements store.Backend.
func (db *DB) Undo() (*store.Store, error) {
	err := withRetryNoResult(func() error {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		undoNext, ok, err := metaLookup(tx, metaUndoNextID)
		if err != nil {
			return err
		}
		if !ok {
			return store.ErrNothingToUndo
		}

		steps := []string{
			`DELETE FROM todos`,
			`INSERT INTO todos SELECT * FROM todos_undo`,
			`DELETE FROM todos_undo`,
		}
		for _, q := range steps {
			if _, err := tx.Exec(q); err != nil {
				return fmt.Errorf("failed to restore undo slot: %w", err)
			}
		}
		if err := setMeta(tx, metaNextID, undoNext); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM meta WHERE key = ?`, metaUndoNextID); err != nil {
			return fmt.Errorf("failed to clear undo slot: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return db.Load()
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}

func metaLookup(q queryer, key string) (string, bool, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func metaInt(q queryer, key string) (int, error) {
	value, ok, err := metaLookup(q, key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
