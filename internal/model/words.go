package model

import "strings"

// Words is task text split into its plain words and inline markers:
// "+tag" adds a tag, "-tag" removes one, "@name" sets the project.
type Words struct {
	Text       string
	AddTags    []string
	RemoveTags []string
	// Project is the last "@name" marker, empty when none was given.
	Project string
}

// ParseWords splits command-line words. A lone "+", "-" or "@" is text.
func ParseWords(parts []string) Words {
	var w Words
	var text []string
	for _, part := range parts {
		if len(part) < 2 {
			text = append(text, part)
			continue
		}
		switch part[0] {
		case '+':
			w.AddTags = append(w.AddTags, part[1:])
		case '-':
			w.RemoveTags = append(w.RemoveTags, part[1:])
		case '@':
			w.Project = part[1:]
		default:
			text = append(text, part)
		}
	}
	w.Text = strings.Join(text, " ")
	return w
}

// ParseLine is ParseWords over a whitespace-separated line.
func ParseLine(line string) Words {
	return ParseWords(strings.Fields(line))
}

// Apply sets the text (when non-empty), project and tag changes on t.
func (w Words) Apply(t *Todo) {
	if w.Text != "" {
		t.Text = w.Text
	}
	if w.Project != "" {
		project := w.Project
		t.Project = &project
	}
	for _, tag := range w.AddTags {
		t.AddTag(tag)
	}
	for _, tag := range w.RemoveTags {
		t.RemoveTag(tag)
	}
}
