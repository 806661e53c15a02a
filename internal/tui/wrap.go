package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/starnote/internal/highlight"
)

// wrapANSI word-wraps an ANSI-styled string to width, returning visual
// lines that each carry the style state of the lines before them. Every
// line but the last ends in a reset so padding does not inherit styles.
func wrapANSI(s string, width int) []string {
	if width <= 0 || s == "" {
		return []string{s}
	}
	wrapped := ansi.Wordwrap(s, width, "")
	wrapped = ansi.Hardwrap(wrapped, width, true)
	lines := highlight.SplitLines(wrapped)
	for i := 0; i < len(lines)-1; i++ {
		if strings.Contains(lines[i], "\x1b[") {
			lines[i] += ansi.ResetStyle
		}
	}
	return lines
}

// padRow pads a rendered row with bg to exactly width cells.
func padRow(s string, width int, bg lipgloss.Style) string {
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		return ansi.Truncate(s, width, "")
	case w < width:
		return s + bg.Render(strings.Repeat(" ", width-w))
	}
	return s
}
