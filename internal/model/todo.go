// Package model defines the task record shared by the store, the CLI and
// the display layer.
package model

import (
	"strings"
	"time"
)

// Priority levels. Lower is more urgent.
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// ValidPriority reports whether p is one of the three supported levels.
func ValidPriority(p int) bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// Todo is a single task. Timestamps serialise as RFC 3339 with their UTC
// offset so they round-trip exactly.
type Todo struct {
	ID          int        `json:"id" yaml:"id"`
	Text        string     `json:"text" yaml:"text"`
	Done        bool       `json:"done" yaml:"done"`
	Priority    *int       `json:"priority" yaml:"priority"` // 1=high, 2=medium, 3=low
	Deadline    *time.Time `json:"deadline" yaml:"deadline"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Project     *string    `json:"project" yaml:"project"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at" yaml:"completed_at"`
}

// NewTodo returns an open task created at now.
func NewTodo(text string, now time.Time) Todo {
	return Todo{
		Text:      text,
		Tags:      []string{},
		CreatedAt: now,
	}
}

// IsOverdue is true for an open task whose deadline is strictly before now.
func (t *Todo) IsOverdue(now time.Time) bool {
	return !t.Done && t.Deadline != nil && t.Deadline.Before(now)
}

// MarkDone completes the task at now.
func (t *Todo) MarkDone(now time.Time) {
	t.Done = true
	t.CompletedAt = &now
}

// PriorityValue returns the priority, or fallback when unset.
func (t *Todo) PriorityValue(fallback int) int {
	if t.Priority == nil {
		return fallback
	}
	return *t.Priority
}

// PriorityDisplay is the fixed-width priority column.
func (t *Todo) PriorityDisplay() string {
	switch t.PriorityValue(0) {
	case PriorityHigh:
		return "!!!"
	case PriorityMedium:
		return "!! "
	case PriorityLow:
		return "!  "
	default:
		return "   "
	}
}

// PriorityBadge is the bracketed marker used in confirmation messages.
func (t *Todo) PriorityBadge() string {
	switch t.PriorityValue(0) {
	case PriorityHigh:
		return "[!!!]"
	case PriorityMedium:
		return "[!!]"
	case PriorityLow:
		return "[!]"
	default:
		return ""
	}
}

// InProject matches the project name case-insensitively.
func (t *Todo) InProject(project string) bool {
	return t.Project != nil && strings.EqualFold(*t.Project, project)
}

// ProjectName returns the project or "".
func (t *Todo) ProjectName() string {
	if t.Project == nil {
		return ""
	}
	return *t.Project
}

func (t *Todo) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// AddTag appends tag unless an equal tag (ignoring case) is present.
func (t *Todo) AddTag(tag string) {
	if !t.HasTag(tag) {
		t.Tags = append(t.Tags, tag)
	}
}

// RemoveTag drops every tag equal to tag, ignoring case.
func (t *Todo) RemoveTag(tag string) {
	kept := t.Tags[:0]
	for _, existing := range t.Tags {
		if !strings.EqualFold(existing, tag) {
			kept = append(kept, existing)
		}
	}
	t.Tags = kept
}
