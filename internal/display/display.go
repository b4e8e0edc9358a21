// Package display renders tasks for the terminal.
package display

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

const (
	// DefaultTextWidth is the text column width when none is configured.
	DefaultTextWidth = 35
	// DeadlineWidth is the deadline column width.
	DeadlineWidth = 18
	// NoDeadline fills the deadline column of tasks without one.
	NoDeadline = "—"
	// Ellipsis marks truncated text.
	Ellipsis = "…"
)

// Config controls colour and column widths.
type Config struct {
	UseColor  bool
	TextWidth int

	styles styles
}

type styles struct {
	bold, dim             lipgloss.Style
	red, redBold          lipgloss.Style
	yellow, yellowBold    lipgloss.Style
	green, blue           lipgloss.Style
	cyan, cyanBold        lipgloss.Style
	magenta, strikeDimmed lipgloss.Style
}

// NewConfig resolves colour use. A nil force means colour only when stdout
// is a terminal that supports it and NO_COLOR is unset.
func NewConfig(force *bool) *Config {
	useColor := termenv.EnvColorProfile() != termenv.Ascii
	if force != nil {
		useColor = *force
	}
	return newConfig(os.Stdout, useColor)
}

// NewConfigFor is NewConfig with an explicit colour decision, styling output
// written to w.
func NewConfigFor(w io.Writer, useColor bool) *Config {
	return newConfig(w, useColor)
}

func newConfig(w io.Writer, useColor bool) *Config {
	r := lipgloss.NewRenderer(w)
	if useColor {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	base := r.NewStyle()
	fg := func(c string) lipgloss.Style { return base.Foreground(lipgloss.Color(c)) }
	return &Config{
		UseColor:  useColor,
		TextWidth: DefaultTextWidth,
		styles: styles{
			bold:         base.Bold(true),
			dim:          base.Faint(true),
			red:          fg("1"),
			redBold:      fg("1").Bold(true),
			yellow:       fg("3"),
			yellowBold:   fg("3").Bold(true),
			green:        fg("2"),
			blue:         fg("4"),
			cyan:         fg("6"),
			cyanBold:     fg("6").Bold(true),
			magenta:      fg("5"),
			strikeDimmed: base.Faint(true).Strikethrough(true),
		},
	}
}

func (c *Config) textWidth() int {
	if c.TextWidth < 2 {
		return DefaultTextWidth
	}
	return c.TextWidth
}

// paint applies s only when colour is on, so plain output carries no escapes.
func (c *Config) paint(s lipgloss.Style, text string) string {
	if !c.UseColor || text == "" {
		return text
	}
	return s.Render(text)
}

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width terminal cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
